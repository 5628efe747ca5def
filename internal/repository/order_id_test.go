package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id := NewOrderID("ORD", now)
	assert.Regexp(t, `^ORD-1700000000123-[0-9A-F]{8}$`, id)
}

func TestNewOrderID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewOrderID("MED", now)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(ErrCouponUsageExhausted))
	assert.True(t, IsRejection(ErrInsufficientWallet))
	assert.False(t, IsRejection(ErrOrderNotFound))
	assert.False(t, IsRejection(nil))
}
