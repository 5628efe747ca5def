package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrder       = errors.New("order id already exists")
	ErrCouponUsageExhausted = errors.New("coupon usage limit reached")
	ErrInsufficientWallet   = errors.New("wallet balance is insufficient")
)

// UsageLimits returns the per-user redemption limit of a coupon code; 0 is unlimited.
type UsageLimits func(code string) int

type OrderRepo struct {
	db     *sql.DB
	usage  *UsageRepo
	prefix string
	limits UsageLimits
	now    func() time.Time
}

func NewOrderRepo(db *sql.DB, prefix string, limits UsageLimits) *OrderRepo {
	if prefix == "" {
		prefix = "ORD"
	}
	if limits == nil {
		limits = func(string) int { return 0 }
	}
	return &OrderRepo{
		db:     db,
		usage:  NewUsageRepo(db),
		prefix: prefix,
		limits: limits,
		now:    time.Now,
	}
}

// IsRejection reports errors caused by the order itself rather than the database.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCouponUsageExhausted) ||
		errors.Is(err, ErrInsufficientWallet) ||
		errors.Is(err, ErrDuplicateOrder)
}

// CreateOrder consumes the coupon, debits the wallet and inserts the order
// in one serializable transaction.
func (r *OrderRepo) CreateOrder(ctx context.Context, payload models.OrderPayload) (string, error) {
	itemsJSON, err := json.Marshal(payload.Items)
	if err != nil {
		return "", fmt.Errorf("marshal order items: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if payload.CouponCode != "" {
		usageCount, err := r.usage.GetAndLockUsage(ctx, tx, payload.CouponCode, payload.UserID)
		if err != nil {
			return "", fmt.Errorf("get lock: %w", err)
		}
		if limit := r.limits(payload.CouponCode); limit > 0 && usageCount >= limit {
			return "", ErrCouponUsageExhausted
		}
		if err := r.usage.IncrementUsage(ctx, tx, payload.CouponCode, payload.UserID); err != nil {
			return "", fmt.Errorf("increment usage: %w", err)
		}
	}

	if payload.WalletAmount.IsPositive() {
		res, err := tx.ExecContext(ctx, `
			UPDATE wallets
			SET balance = balance - $2, updated_at = NOW()
			WHERE user_id = $1 AND balance >= $2
		`, payload.UserID, payload.WalletAmount)
		if err != nil {
			return "", fmt.Errorf("debit wallet: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return "", fmt.Errorf("debit wallet: %w", err)
		} else if n == 0 {
			return "", ErrInsufficientWallet
		}
	}

	id := NewOrderID(r.prefix, r.now())
	insert := `
		INSERT INTO orders
		(id, user_id, status, items, subtotal, coupon_code, discount_amount, total_amount,
		 wallet_amount, payable_amount, delivery_address_id, prescription_url, payment_method,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
	`
	_, err = tx.ExecContext(ctx, insert,
		id,
		payload.UserID,
		models.OrderStatusPlaced,
		itemsJSON,
		payload.Subtotal,
		payload.CouponCode,
		payload.DiscountAmount,
		payload.TotalAmount,
		payload.WalletAmount,
		payload.PayableAmount,
		payload.DeliveryAddressID,
		payload.PrescriptionURL,
		payload.PaymentMethod,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrDuplicateOrder
		}
		return "", fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("tx commit: %w", err)
	}
	committed = true
	return id, nil
}

func (r *OrderRepo) GetOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	query := `
		SELECT id, user_id, status, items, subtotal, coupon_code, discount_amount, total_amount,
		       wallet_amount, payable_amount, delivery_address_id, prescription_url, payment_method,
		       created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`

	var o models.Order
	var itemsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&itemsJSON,
		&o.Subtotal,
		&o.CouponCode,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.WalletAmount,
		&o.PayableAmount,
		&o.DeliveryAddressID,
		&o.PrescriptionURL,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}
