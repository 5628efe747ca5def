package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrMissingAddress      = errors.New("delivery address is required")
	ErrMissingPrescription = errors.New("prescription is required for one or more items")
	ErrOrderPersistence    = errors.New("order could not be persisted")
)

// OrderCreator persists a payload and returns the generated order id.
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload models.OrderPayload) (string, error)
}

type AssembleInput struct {
	UserID            string
	Items             []models.CartItem
	DeliveryAddressID string
	CouponCode        string
	DiscountAmount    decimal.Decimal
	UseWallet         bool
	WalletBalance     decimal.Decimal
	PrescriptionURL   string
	PaymentMethod     string
}

type OrderAssembler struct {
	creator OrderCreator
	logger  *zap.Logger
}

func NewOrderAssembler(creator OrderCreator, logger *zap.Logger) *OrderAssembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderAssembler{creator: creator, logger: logger}
}

// Build validates the input and computes the payload totals. It fails closed
// on a missing address or a missing required prescription.
func (a *OrderAssembler) Build(in AssembleInput) (models.OrderPayload, error) {
	if len(in.Items) == 0 {
		return models.OrderPayload{}, ErrEmptyCart
	}
	if strings.TrimSpace(in.DeliveryAddressID) == "" {
		return models.OrderPayload{}, ErrMissingAddress
	}
	prescriptionURL := strings.TrimSpace(in.PrescriptionURL)
	if models.RequiresPrescription(in.Items) && prescriptionURL == "" {
		return models.OrderPayload{}, ErrMissingPrescription
	}

	subtotal := models.Subtotal(in.Items)
	total := OrderTotal(subtotal, in.DiscountAmount)
	walletAmount := WalletDeduction(total, in.WalletBalance, in.UseWallet)

	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = models.DefaultPaymentMethod
	}

	items := make([]models.CartItem, len(in.Items))
	copy(items, in.Items)

	return models.OrderPayload{
		UserID:            in.UserID,
		Items:             items,
		Subtotal:          subtotal,
		CouponCode:        in.CouponCode,
		DiscountAmount:    in.DiscountAmount,
		TotalAmount:       total,
		WalletAmount:      walletAmount,
		PayableAmount:     total.Sub(walletAmount),
		DeliveryAddressID: in.DeliveryAddressID,
		PrescriptionURL:   prescriptionURL,
		PaymentMethod:     paymentMethod,
	}, nil
}

// OrderTotal is subtotal minus discount, floored at zero.
func OrderTotal(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Submit makes a single attempt to persist the payload. Collaborator errors
// are wrapped with ErrOrderPersistence and stay reachable through errors.Is.
func (a *OrderAssembler) Submit(ctx context.Context, payload models.OrderPayload) (string, error) {
	id, err := a.creator.CreateOrder(ctx, payload)
	if err != nil {
		a.logger.Warn("order submission failed",
			zap.String("user_id", payload.UserID),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrOrderPersistence, err)
	}

	a.logger.Info("order submitted",
		zap.String("order_id", id),
		zap.String("user_id", payload.UserID),
		zap.String("total_amount", payload.TotalAmount.String()),
		zap.Int("items", len(payload.Items)))
	return id, nil
}

// Assemble builds the payload and submits it.
func (a *OrderAssembler) Assemble(ctx context.Context, in AssembleInput) (models.OrderPayload, string, error) {
	payload, err := a.Build(in)
	if err != nil {
		return models.OrderPayload{}, "", err
	}
	id, err := a.Submit(ctx, payload)
	if err != nil {
		return payload, "", err
	}
	return payload, id, nil
}
