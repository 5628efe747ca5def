package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

var (
	ErrIllegalTransition  = errors.New("illegal transition of checkout state")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "IDLE"
	CheckoutValidating CheckoutState = "VALIDATING"
	CheckoutSubmitting CheckoutState = "SUBMITTING"
	CheckoutSucceeded  CheckoutState = "SUCCEEDED"
	CheckoutFailed     CheckoutState = "FAILED"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutIdle:       {CheckoutValidating},
	CheckoutValidating: {CheckoutSubmitting, CheckoutFailed},
	CheckoutSubmitting: {CheckoutSucceeded, CheckoutFailed},
	CheckoutFailed:     {CheckoutValidating},
}

func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutSucceeded
}

func (s CheckoutState) String() string {
	return string(s)
}

// Checkout drives one checkout action through validation and submission.
// A failed checkout may be run again; a succeeded one may not.
type Checkout struct {
	mu        sync.Mutex
	state     CheckoutState
	lastErr   error
	orderID   string
	assembler *OrderAssembler
	logger    *zap.Logger
}

func NewCheckout(assembler *OrderAssembler, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{state: CheckoutIdle, assembler: assembler, logger: logger}
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the error of the last failed run.
func (c *Checkout) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Checkout) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderID
}

// Run validates and submits in. The submission is not cancelled when ctx is;
// the caller waits for its outcome.
func (c *Checkout) Run(ctx context.Context, in AssembleInput) (models.CheckoutResult, error) {
	c.mu.Lock()
	if c.state == CheckoutValidating || c.state == CheckoutSubmitting {
		c.mu.Unlock()
		return models.CheckoutResult{}, ErrCheckoutInProgress
	}
	if err := c.transitionLocked(CheckoutValidating); err != nil {
		c.mu.Unlock()
		return models.CheckoutResult{}, err
	}
	c.lastErr = nil

	payload, err := c.assembler.Build(in)
	if err != nil {
		c.failLocked(err)
		c.mu.Unlock()
		return models.CheckoutResult{}, err
	}
	_ = c.transitionLocked(CheckoutSubmitting)
	c.mu.Unlock()

	id, err := c.assembler.Submit(context.WithoutCancel(ctx), payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failLocked(err)
		return models.CheckoutResult{}, err
	}
	_ = c.transitionLocked(CheckoutSucceeded)
	c.orderID = id
	return models.CheckoutResult{OrderID: id, Payload: payload}, nil
}

func (c *Checkout) transitionLocked(next CheckoutState) error {
	if !c.state.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	c.logger.Debug("checkout transition",
		zap.Stringer("from", c.state),
		zap.Stringer("to", next))
	c.state = next
	return nil
}

func (c *Checkout) failLocked(err error) {
	_ = c.transitionLocked(CheckoutFailed)
	c.lastErr = err
}
