package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

func lineItem(id string, price int64, qty int) models.CartItem {
	return models.CartItem{ID: id, Name: id, Price: decimal.NewFromInt(price), Quantity: qty, StripQuantity: 1}
}

func TestBuild_Totals(t *testing.T) {
	a := NewOrderAssembler(&mockCreator{}, nil)
	promo := decimal.NewFromInt(40)
	discounted := lineItem("p2", 50, 3)
	discounted.DiscountPrice = &promo

	payload, err := a.Build(AssembleInput{
		UserID:            "u1",
		Items:             []models.CartItem{lineItem("p1", 100, 2), discounted},
		DeliveryAddressID: "addr-1",
		CouponCode:        "WELCOME10",
		DiscountAmount:    decimal.NewFromInt(32),
		PaymentMethod:     "upi",
	})
	require.NoError(t, err)

	assert.True(t, payload.Subtotal.Equal(decimal.NewFromInt(320)))
	assert.True(t, payload.TotalAmount.Equal(decimal.NewFromInt(288)))
	assert.True(t, payload.PayableAmount.Equal(decimal.NewFromInt(288)))
	assert.True(t, payload.WalletAmount.IsZero())
	assert.Equal(t, "addr-1", payload.DeliveryAddressID)
	assert.Equal(t, "upi", payload.PaymentMethod)
	assert.Equal(t, "WELCOME10", payload.CouponCode)
}

func TestBuild_TotalNeverNegative(t *testing.T) {
	a := NewOrderAssembler(&mockCreator{}, nil)

	payload, err := a.Build(AssembleInput{
		Items:             []models.CartItem{lineItem("p1", 30, 1)},
		DeliveryAddressID: "addr-1",
		DiscountAmount:    decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.True(t, payload.TotalAmount.IsZero())
	assert.True(t, payload.PayableAmount.IsZero())
	assert.Equal(t, models.DefaultPaymentMethod, payload.PaymentMethod)
}

func TestBuild_Wallet(t *testing.T) {
	a := NewOrderAssembler(&mockCreator{}, nil)

	payload, err := a.Build(AssembleInput{
		Items:             []models.CartItem{lineItem("p1", 100, 2)},
		DeliveryAddressID: "addr-1",
		UseWallet:         true,
		WalletBalance:     decimal.NewFromInt(120),
	})
	require.NoError(t, err)
	assert.True(t, payload.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, payload.WalletAmount.Equal(decimal.NewFromInt(120)))
	assert.True(t, payload.PayableAmount.Equal(decimal.NewFromInt(80)))
}

func TestBuild_Validation(t *testing.T) {
	rx := lineItem("rx", 100, 1)
	rx.PrescriptionRequired = true

	tests := []struct {
		name string
		in   AssembleInput
		want error
	}{
		{
			name: "empty cart",
			in:   AssembleInput{DeliveryAddressID: "addr-1"},
			want: ErrEmptyCart,
		},
		{
			name: "missing address",
			in:   AssembleInput{Items: []models.CartItem{lineItem("p1", 100, 2)}},
			want: ErrMissingAddress,
		},
		{
			name: "blank address",
			in:   AssembleInput{Items: []models.CartItem{lineItem("p1", 100, 2)}, DeliveryAddressID: "  "},
			want: ErrMissingAddress,
		},
		{
			name: "missing prescription",
			in:   AssembleInput{Items: []models.CartItem{lineItem("p1", 10, 1), rx}, DeliveryAddressID: "addr-1"},
			want: ErrMissingPrescription,
		},
		{
			name: "address checked before prescription",
			in:   AssembleInput{Items: []models.CartItem{rx}},
			want: ErrMissingAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrderAssembler(&mockCreator{}, nil).Build(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_PrescriptionPresent(t *testing.T) {
	rx := lineItem("rx", 100, 1)
	rx.PrescriptionRequired = true

	payload, err := NewOrderAssembler(&mockCreator{}, nil).Build(AssembleInput{
		Items:             []models.CartItem{rx},
		DeliveryAddressID: "addr-1",
		PrescriptionURL:   "https://files.example/rx/1.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/rx/1.jpg", payload.PrescriptionURL)
}

func TestAssemble_MissingAddressNeverReachesPersistence(t *testing.T) {
	creator := &mockCreator{id: "ORD-1-AAAA"}
	a := NewOrderAssembler(creator, nil)

	_, _, err := a.Assemble(context.Background(), AssembleInput{
		Items:          []models.CartItem{lineItem("p1", 100, 2)},
		DiscountAmount: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrMissingAddress)
	assert.Equal(t, 0, creator.callCount())
}

func TestAssemble_Success(t *testing.T) {
	creator := &mockCreator{id: "ORD-1700000000000-ABCD1234"}
	a := NewOrderAssembler(creator, nil)

	payload, id, err := a.Assemble(context.Background(), AssembleInput{
		UserID:            "u1",
		Items:             []models.CartItem{lineItem("p1", 100, 2)},
		DeliveryAddressID: "addr-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-1700000000000-ABCD1234", id)
	require.Len(t, creator.payloads, 1)
	assert.True(t, creator.payloads[0].TotalAmount.Equal(payload.TotalAmount))
}

func TestAssemble_PersistenceErrorForwarded(t *testing.T) {
	downstream := errors.New("connection reset")
	creator := &mockCreator{err: downstream}
	a := NewOrderAssembler(creator, nil)

	_, id, err := a.Assemble(context.Background(), AssembleInput{
		Items:             []models.CartItem{lineItem("p1", 100, 2)},
		DeliveryAddressID: "addr-1",
	})
	assert.Empty(t, id)
	assert.ErrorIs(t, err, ErrOrderPersistence)
	assert.ErrorIs(t, err, downstream)
	assert.Equal(t, 1, creator.callCount(), "no retry")
}

func TestBuild_CopiesItems(t *testing.T) {
	items := []models.CartItem{lineItem("p1", 100, 2)}
	payload, err := NewOrderAssembler(&mockCreator{}, nil).Build(AssembleInput{Items: items, DeliveryAddressID: "a"})
	require.NoError(t, err)

	items[0].Quantity = 99
	assert.Equal(t, 2, payload.Items[0].Quantity)
}
