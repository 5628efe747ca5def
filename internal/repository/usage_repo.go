package repository

import (
	"context"
	"database/sql"
	"time"
)

type UsageRepo struct {
	db *sql.DB
}

func NewUsageRepo(db *sql.DB) *UsageRepo {
	return &UsageRepo{db: db}
}

// GetAndLockUsage creates the usage row if needed and locks it for the rest of tx.
func (r *UsageRepo) GetAndLockUsage(ctx context.Context, tx *sql.Tx, couponCode, userID string) (int, error) {
	insert := `
		INSERT INTO coupon_usage (coupon_code, user_id, usage_count, last_used)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (coupon_code, user_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, insert, couponCode, userID); err != nil {
		return 0, err
	}

	query := `
		SELECT usage_count
		FROM coupon_usage
		WHERE coupon_code = $1 AND user_id = $2
		FOR UPDATE
	`
	var usageCount int
	if err := tx.QueryRowContext(ctx, query, couponCode, userID).Scan(&usageCount); err != nil {
		return 0, err
	}
	return usageCount, nil
}

// IncrementUsage must run in the tx that locked the row.
func (r *UsageRepo) IncrementUsage(ctx context.Context, tx *sql.Tx, couponCode, userID string) error {
	query := `
		UPDATE coupon_usage
		SET usage_count = usage_count + 1,
		    last_used = $3
		WHERE coupon_code = $1 AND user_id = $2
	`

	_, err := tx.ExecContext(ctx, query, couponCode, userID, time.Now())
	return err
}

// UsageCount is a non-locking read; zero when the user never redeemed the code.
func (r *UsageRepo) UsageCount(ctx context.Context, couponCode, userID string) (int, error) {
	var usageCount int
	query := `SELECT usage_count FROM coupon_usage WHERE coupon_code = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, couponCode, userID).Scan(&usageCount)
	switch err {
	case nil:
		return usageCount, nil
	case sql.ErrNoRows:
		return 0, nil
	default:
		return 0, err
	}
}
