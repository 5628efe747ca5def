// Package storage holds the durable cart slot backends. A slot is a single
// named blob that is fully rewritten on every save.
package storage

import (
	"context"
	"errors"
)

// ErrEmptySlot is returned by Load when nothing was ever saved under the key.
var ErrEmptySlot = errors.New("slot is empty")

type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
