package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
	"github.com/Cheertaboi/medicine-checkout-service/internal/storage"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotInCart   = errors.New("item not in cart")
)

// CartStores hands out per-session cart stores sharing one slot backend.
type CartStores struct {
	slot   storage.Slot
	logger *zap.Logger
	sfg    singleflight.Group // coalesces concurrent loads of one slot
}

func NewCartStores(slot storage.Slot, logger *zap.Logger) *CartStores {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStores{slot: slot, logger: logger}
}

// For returns the store bound to the given session slot.
func (c *CartStores) For(sessionID string) *CartStore {
	return &CartStore{owner: c, key: sessionID}
}

// CartStore owns the line items of one session. Every mutation rewrites the
// whole slot; concurrent writers race and the last write wins.
type CartStore struct {
	owner *CartStores
	key   string
}

// loadTimeout bounds a coalesced load, which runs detached from any one
// caller's context.
const loadTimeout = 10 * time.Second

// Items loads the persisted cart. A slot that was never written is an empty
// cart. Concurrent readers of one session share a single slot load; each
// caller still returns as soon as its own ctx is done.
func (s *CartStore) Items(ctx context.Context) ([]models.CartItem, error) {
	ch := s.owner.sfg.DoChan(s.key, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(lctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// the slice is shared between singleflight callers
		shared := res.Val.([]models.CartItem)
		items := make([]models.CartItem, len(shared))
		copy(items, shared)
		return items, nil
	}
}

// load reads the slot directly. Mutations use it so they never act on a
// read that started before an earlier write.
func (s *CartStore) load(ctx context.Context) ([]models.CartItem, error) {
	data, err := s.owner.slot.Load(ctx, s.key)
	if errors.Is(err, storage.ErrEmptySlot) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// AddOrUpdate adds quantity to an existing line and overwrites its strip
// quantity, or appends a new line. It returns the number of distinct lines.
func (s *CartStore) AddOrUpdate(ctx context.Context, product models.Product, quantity, stripQuantity int) (int, error) {
	if quantity < 1 || stripQuantity < 1 {
		return 0, ErrInvalidQuantity
	}

	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	found := false
	for i := range items {
		if items[i].ID == product.ID {
			items[i].Quantity += quantity
			items[i].StripQuantity = stripQuantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.NewCartItem(product, quantity, stripQuantity))
	}

	if err := s.save(ctx, items); err != nil {
		return 0, err
	}

	s.owner.logger.Debug("cart item added",
		zap.String("session_id", s.key),
		zap.String("product_id", product.ID),
		zap.Int("quantity", quantity),
		zap.Int("strip_quantity", stripQuantity),
		zap.Bool("merged", found))

	return len(items), nil
}

// Count is the number of distinct lines; zero when nothing was persisted.
func (s *CartStore) Count(ctx context.Context) (int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *CartStore) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.update(ctx, productID, func(it *models.CartItem) { it.Quantity = quantity })
}

func (s *CartStore) SetStripQuantity(ctx context.Context, productID string, stripQuantity int) error {
	if stripQuantity < 1 {
		return ErrInvalidQuantity
	}
	return s.update(ctx, productID, func(it *models.CartItem) { it.StripQuantity = stripQuantity })
}

func (s *CartStore) Remove(ctx context.Context, productID string) error {
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, it := range items {
		if it.ID == productID {
			items = append(items[:i], items[i+1:]...)
			return s.save(ctx, items)
		}
	}
	return ErrItemNotInCart
}

// Clear empties the slot. Callers do this after an order was persisted.
func (s *CartStore) Clear(ctx context.Context) error {
	defer s.owner.sfg.Forget(s.key)
	if err := s.owner.slot.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartStore) update(ctx context.Context, productID string, fn func(*models.CartItem)) error {
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == productID {
			fn(&items[i])
			return s.save(ctx, items)
		}
	}
	return ErrItemNotInCart
}

func (s *CartStore) save(ctx context.Context, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	// readers arriving after this write must not join an older load
	defer s.owner.sfg.Forget(s.key)
	if err := s.owner.slot.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
