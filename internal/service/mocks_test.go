package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/medicine-checkout-service/internal/models"
)

type mockCreator struct {
	m        sync.Mutex
	id       string
	err      error
	calls    int
	payloads []models.OrderPayload
	block    chan struct{} // when set, CreateOrder waits for it to close
}

func (m *mockCreator) CreateOrder(ctx context.Context, payload models.OrderPayload) (string, error) {
	if m.block != nil {
		<-m.block
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	m.payloads = append(m.payloads, payload)
	if m.err != nil {
		return "", m.err
	}
	return m.id, nil
}

func (m *mockCreator) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

type mockAddresses struct {
	addrs []models.Address
	err   error
}

func (m *mockAddresses) Get(_ context.Context, userID, addressID string) (*models.Address, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.addrs {
		if a.ID == addressID && a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockAddresses) ListByUser(_ context.Context, userID string) ([]models.Address, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Address
	for _, a := range m.addrs {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockWallets struct {
	balance decimal.Decimal
	err     error
}

func (m *mockWallets) Balance(context.Context, string) (decimal.Decimal, error) {
	return m.balance, m.err
}
