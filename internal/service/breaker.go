package service

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	// Ignore reports errors that are a rejection rather than an outage;
	// they do not count towards tripping.
	Ignore func(error) bool
}

// BreakerOrderCreator fails fast while the wrapped creator keeps failing.
// It never retries.
type BreakerOrderCreator struct {
	next OrderCreator
	cb   *gobreaker.CircuitBreaker[string]
}

func NewBreakerOrderCreator(next OrderCreator, s BreakerSettings, logger *zap.Logger) *BreakerOrderCreator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.Name == "" {
		s.Name = "order-creator"
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	threshold := s.FailureThreshold
	ignore := s.Ignore

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || (ignore != nil && ignore(err))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &BreakerOrderCreator{next: next, cb: cb}
}

func (b *BreakerOrderCreator) CreateOrder(ctx context.Context, payload models.OrderPayload) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.next.CreateOrder(ctx, payload)
	})
}

func (b *BreakerOrderCreator) State() gobreaker.State {
	return b.cb.State()
}
