package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

type AddressRepo struct {
	db *sql.DB
}

func NewAddressRepo(db *sql.DB) *AddressRepo {
	return &AddressRepo{db: db}
}

// Get returns nil, nil when the user has no address with that id.
func (r *AddressRepo) Get(ctx context.Context, userID, addressID string) (*models.Address, error) {
	query := `
		SELECT id, user_id, address, city, state, zipcode, is_default
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`
	var a models.Address
	err := r.db.QueryRowContext(ctx, query, addressID, userID).Scan(
		&a.ID, &a.UserID, &a.Address, &a.City, &a.State, &a.Zipcode, &a.IsDefault,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AddressRepo) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	query := `
		SELECT id, user_id, address, city, state, zipcode, is_default
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	addrs := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Address, &a.City, &a.State, &a.Zipcode, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addrs = append(addrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return addrs, nil
}
