package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

// AddressRepo returns nil without error when the address does not exist.
type AddressRepo interface {
	Get(ctx context.Context, userID, addressID string) (*models.Address, error)
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
}

type WalletRepo interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

type CheckoutService struct {
	carts     *CartStores
	coupons   *CouponService
	addresses AddressRepo
	wallets   WalletRepo
	assembler *OrderAssembler
	logger    *zap.Logger

	mu        sync.Mutex
	checkouts map[string]*Checkout // user id -> latest checkout
	busy      map[string]bool      // user ids with a request underway
}

// CheckoutStatus is the outcome of a user's latest checkout.
type CheckoutStatus struct {
	State   CheckoutState `json:"state"`
	OrderID string        `json:"order_id,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func NewCheckoutService(carts *CartStores, coupons *CouponService, addresses AddressRepo, wallets WalletRepo, assembler *OrderAssembler, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		carts:     carts,
		coupons:   coupons,
		addresses: addresses,
		wallets:   wallets,
		assembler: assembler,
		logger:    logger,
		checkouts: make(map[string]*Checkout),
		busy:      make(map[string]bool),
	}
}

// ResolveAddress returns the requested address id, or the user's default
// address when none was selected. An empty result means no usable address.
func (s *CheckoutService) ResolveAddress(ctx context.Context, userID, addressID string) (string, error) {
	if addressID != "" {
		addr, err := s.addresses.Get(ctx, userID, addressID)
		if err != nil {
			return "", fmt.Errorf("get address: %w", err)
		}
		if addr == nil {
			return "", nil
		}
		return addr.ID, nil
	}

	addrs, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list addresses: %w", err)
	}
	if def, ok := models.DefaultAddress(addrs); ok {
		return def.ID, nil
	}
	return "", nil
}

// Checkout places an order from the session cart and clears the cart once
// the order is persisted. On failure the cart is left as it was.
func (s *CheckoutService) Checkout(ctx context.Context, req models.CheckoutRequest) (models.CheckoutResult, error) {
	co, err := s.begin(req.UserID)
	if err != nil {
		return models.CheckoutResult{}, err
	}
	defer s.end(req.UserID)

	store := s.carts.For(req.SessionID)
	items, err := store.Items(ctx)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	var sel CouponSelection
	if req.CouponCode != "" {
		if err := sel.Apply(s.coupons, req.CouponCode, models.Subtotal(items)); err != nil {
			return models.CheckoutResult{}, err
		}
	}

	addressID, err := s.ResolveAddress(ctx, req.UserID, req.AddressID)
	if err != nil {
		return models.CheckoutResult{}, err
	}

	balance := decimal.Zero
	if req.UseWallet {
		balance, err = s.wallets.Balance(ctx, req.UserID)
		if err != nil {
			return models.CheckoutResult{}, fmt.Errorf("wallet balance: %w", err)
		}
	}

	res, err := co.Run(ctx, AssembleInput{
		UserID:            req.UserID,
		Items:             items,
		DeliveryAddressID: addressID,
		CouponCode:        sel.Code,
		DiscountAmount:    sel.Discount,
		UseWallet:         req.UseWallet,
		WalletBalance:     balance,
		PrescriptionURL:   req.PrescriptionURL,
		PaymentMethod:     req.PaymentMethod,
	})
	if err != nil {
		return models.CheckoutResult{}, err
	}

	if err := store.Clear(ctx); err != nil {
		// the order exists; a stale cart is only an inconvenience
		s.logger.Error("clear cart after checkout",
			zap.String("session_id", req.SessionID),
			zap.String("order_id", res.OrderID),
			zap.Error(err))
	}
	return res, nil
}

// Status reports the user's latest checkout, if there was one.
func (s *CheckoutService) Status(userID string) (CheckoutStatus, bool) {
	s.mu.Lock()
	co, ok := s.checkouts[userID]
	s.mu.Unlock()
	if !ok {
		return CheckoutStatus{}, false
	}

	st := CheckoutStatus{State: co.State(), OrderID: co.OrderID()}
	if err := co.Err(); err != nil {
		st.Error = err.Error()
	}
	return st, true
}

// begin reuses a failed checkout so the retry goes Failed -> Validating;
// a succeeded one is replaced because a new order needs a new checkout.
func (s *CheckoutService) begin(userID string) (*Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[userID] {
		return nil, ErrCheckoutInProgress
	}
	co, ok := s.checkouts[userID]
	if !ok || co.State().IsTerminal() {
		co = NewCheckout(s.assembler, s.logger)
		s.checkouts[userID] = co
	}
	s.busy[userID] = true
	return co, nil
}

func (s *CheckoutService) end(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, userID)
}
