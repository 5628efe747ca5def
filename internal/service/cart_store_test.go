package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/storage"
)

type failingSlot struct {
	err error
}

func (f failingSlot) Load(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingSlot) Save(context.Context, string, []byte) error   { return f.err }
func (f failingSlot) Delete(context.Context, string) error         { return f.err }

// stallingSlot reads the first Load's data immediately, then holds that
// Load until release is closed. Later calls go straight through.
type stallingSlot struct {
	*storage.MemorySlot
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newStallingSlot() *stallingSlot {
	return &stallingSlot{
		MemorySlot: storage.NewMemorySlot(),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (s *stallingSlot) Load(ctx context.Context, key string) ([]byte, error) {
	first := false
	s.once.Do(func() { first = true })
	data, err := s.MemorySlot.Load(ctx, key)
	if first {
		close(s.started)
		<-s.release
	}
	return data, err
}

func cartIDs(items []models.CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func product(id string, price int64) models.Product {
	return models.Product{ID: id, Name: "Medicine " + id, Image: id + ".png", Price: decimal.NewFromInt(price)}
}

func newMemoryStore() (*CartStore, *storage.MemorySlot) {
	slot := storage.NewMemorySlot()
	return NewCartStores(slot, nil).For("sess-1"), slot
}

func TestCartStore_CountEmpty(t *testing.T) {
	store, _ := newMemoryStore()

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCartStore_AddNewProduct(t *testing.T) {
	store, _ := newMemoryStore()
	ctx := context.Background()

	n, err := store.AddOrUpdate(ctx, product("p1", 100), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.AddOrUpdate(ctx, product("p2", 50), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 3, items[0].StripQuantity)
}

func TestCartStore_MergeExisting(t *testing.T) {
	store, _ := newMemoryStore()
	ctx := context.Background()

	_, err := store.AddOrUpdate(ctx, product("p1", 100), 2, 3)
	require.NoError(t, err)

	// quantity adds up, strip quantity is overwritten
	n, err := store.AddOrUpdate(ctx, product("p1", 100), 4, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
	assert.Equal(t, 1, items[0].StripQuantity)
}

func TestCartStore_InvalidQuantity(t *testing.T) {
	store, slot := newMemoryStore()
	ctx := context.Background()

	_, err := store.AddOrUpdate(ctx, product("p1", 100), 0, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = store.AddOrUpdate(ctx, product("p1", 100), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = slot.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, storage.ErrEmptySlot, "nothing should be persisted")
}

func TestCartStore_PersistsFullCart(t *testing.T) {
	store, slot := newMemoryStore()
	ctx := context.Background()

	_, err := store.AddOrUpdate(ctx, product("p1", 100), 1, 1)
	require.NoError(t, err)
	_, err = store.AddOrUpdate(ctx, product("p2", 20), 5, 2)
	require.NoError(t, err)

	data, err := slot.Load(ctx, "sess-1")
	require.NoError(t, err)

	var stored []models.CartItem
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "p2", stored[1].ID)
	assert.Equal(t, 5, stored[1].Quantity)
}

func TestCartStore_RoundTripPreservesOrder(t *testing.T) {
	slot := storage.NewMemorySlot()
	ctx := context.Background()
	discount := decimal.NewFromInt(80)

	first := NewCartStores(slot, nil).For("sess-1")
	p := product("c", 100)
	p.DiscountPrice = &discount
	p.PrescriptionRequired = true
	for _, prod := range []models.Product{product("b", 10), p, product("a", 5)} {
		_, err := first.AddOrUpdate(ctx, prod, 1, 2)
		require.NoError(t, err)
	}
	want, err := first.Items(ctx)
	require.NoError(t, err)

	// a fresh store over the same slot is a new session start
	reloaded, err := NewCartStores(slot, nil).For("sess-1").Items(ctx)
	require.NoError(t, err)

	require.Len(t, reloaded, 3)
	for i := range want {
		assert.Equal(t, want[i].ID, reloaded[i].ID)
		assert.Equal(t, want[i].Quantity, reloaded[i].Quantity)
		assert.Equal(t, want[i].StripQuantity, reloaded[i].StripQuantity)
		assert.True(t, want[i].Price.Equal(reloaded[i].Price))
		assert.Equal(t, want[i].PrescriptionRequired, reloaded[i].PrescriptionRequired)
	}
	require.NotNil(t, reloaded[1].DiscountPrice)
	assert.True(t, reloaded[1].DiscountPrice.Equal(discount))
}

func TestCartStore_SessionsAreIsolated(t *testing.T) {
	stores := NewCartStores(storage.NewMemorySlot(), nil)
	ctx := context.Background()

	_, err := stores.For("a").AddOrUpdate(ctx, product("p1", 1), 1, 1)
	require.NoError(t, err)

	n, err := stores.For("b").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCartStore_SetQuantities(t *testing.T) {
	store, _ := newMemoryStore()
	ctx := context.Background()
	_, err := store.AddOrUpdate(ctx, product("p1", 100), 2, 3)
	require.NoError(t, err)

	require.NoError(t, store.SetQuantity(ctx, "p1", 7))
	require.NoError(t, store.SetStripQuantity(ctx, "p1", 4))
	assert.ErrorIs(t, store.SetQuantity(ctx, "p1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, store.SetQuantity(ctx, "missing", 1), ErrItemNotInCart)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].Quantity)
	assert.Equal(t, 4, items[0].StripQuantity)
}

func TestCartStore_RemoveAndClear(t *testing.T) {
	store, _ := newMemoryStore()
	ctx := context.Background()
	_, err := store.AddOrUpdate(ctx, product("p1", 100), 1, 1)
	require.NoError(t, err)
	_, err = store.AddOrUpdate(ctx, product("p2", 100), 1, 1)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, "p1"))
	assert.ErrorIs(t, store.Remove(ctx, "p1"), ErrItemNotInCart)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Clear(ctx))
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCartStore_SlotErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	store := NewCartStores(failingSlot{err: boom}, nil).For("sess-1")

	_, err := store.AddOrUpdate(context.Background(), product("p1", 1), 1, 1)
	assert.ErrorIs(t, err, boom)

	_, err = store.Count(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCartStore_CorruptSlot(t *testing.T) {
	store, slot := newMemoryStore()
	require.NoError(t, slot.Save(context.Background(), "sess-1", []byte(`[{"id":`)))

	_, err := store.Items(context.Background())
	assert.ErrorContains(t, err, "decode cart")
}

func TestCartStore_RedisSlot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewCartStores(storage.NewRedisSlot(client, 0), nil).For("sess-9")
	ctx := context.Background()

	_, err := store.AddOrUpdate(ctx, product("p1", 100), 1, 1)
	require.NoError(t, err)
	n, err := store.AddOrUpdate(ctx, product("p1", 100), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, mr.Exists("cart:sess-9"))

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 5, items[0].StripQuantity)
}

func TestCartItem_EffectivePrice(t *testing.T) {
	promo := decimal.NewFromInt(90)
	item := models.CartItem{Price: decimal.NewFromInt(100), Quantity: 3}
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(300)))

	item.DiscountPrice = &promo
	assert.True(t, item.EffectivePrice().Equal(promo))
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(270)))
}

func TestCartStore_WritesIgnoreInFlightRead(t *testing.T) {
	slot := newStallingSlot()
	ctx := context.Background()
	stores := NewCartStores(slot, nil)
	store := stores.For("sess-1")

	seed, err := json.Marshal([]models.CartItem{models.NewCartItem(product("p1", 10), 1, 1)})
	require.NoError(t, err)
	require.NoError(t, slot.MemorySlot.Save(ctx, "sess-1", seed))

	readDone := make(chan []models.CartItem, 1)
	go func() {
		items, _ := stores.For("sess-1").Items(ctx)
		readDone <- items
	}()
	<-slot.started

	require.NoError(t, store.Clear(ctx))
	n, err := store.AddOrUpdate(ctx, product("p2", 10), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, cartIDs(items))

	close(slot.release)
	assert.Equal(t, []string{"p1"}, cartIDs(<-readDone), "the stalled read saw the cart as it was")

	items, err = store.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, cartIDs(items))
}

func TestCartStore_SharedLoadSurvivesCallerCancel(t *testing.T) {
	slot := newStallingSlot()
	stores := NewCartStores(slot, nil)
	require.NoError(t, slot.MemorySlot.Save(context.Background(), "sess-1",
		[]byte(`[{"id":"p1","price":"10","quantity":1,"strip_quantity":1}]`)))

	cctx, cancel := context.WithCancel(context.Background())
	aDone := make(chan error, 1)
	go func() {
		_, err := stores.For("sess-1").Items(cctx)
		aDone <- err
	}()
	<-slot.started

	type result struct {
		n   int
		err error
	}
	bDone := make(chan result, 1)
	go func() {
		n, err := stores.For("sess-1").Count(context.Background())
		bDone <- result{n, err}
	}()

	cancel()
	select {
	case err := <-aDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(slot.release)
	select {
	case res := <-bDone:
		require.NoError(t, res.err)
		assert.Equal(t, 1, res.n)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
}
