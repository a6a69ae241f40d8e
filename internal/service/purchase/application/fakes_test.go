// internal/service/purchase/application/fakes_test.go
package application

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"pulsequeue/internal/service/purchase/domain"
)

func testTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}

// fakeInventory mirrors the store contract: a conditional reserve guarded by
// the stock level, an idempotent settle keyed by (order, sku), and no guard
// at all for SKUs that were never seeded.
type fakeInventory struct {
	mu       sync.Mutex
	stock    map[string]int
	reserved map[string]int
	settled  map[string]bool

	reserveErr error
	settleErr  error
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		stock:    make(map[string]int),
		reserved: make(map[string]int),
		settled:  make(map[string]bool),
	}
}

func (f *fakeInventory) seed(sku string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[sku] = stock
	f.reserved[sku] = 0
}

func (f *fakeInventory) Reserve(ctx context.Context, sku string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return f.reserveErr
	}
	if stock, seeded := f.stock[sku]; seeded && stock < qty {
		return &domain.InsufficientStockError{SKU: sku}
	}
	f.reserved[sku] += qty
	return nil
}

func (f *fakeInventory) Settle(ctx context.Context, orderID, sku string, qty int, consumeStock bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settleErr != nil {
		return false, f.settleErr
	}
	marker := orderID + "|" + sku
	if f.settled[marker] {
		return false, nil
	}
	f.reserved[sku] -= qty
	if consumeStock {
		f.stock[sku] -= qty
	}
	f.settled[marker] = true
	return true, nil
}

func (f *fakeInventory) snapshot(sku string) (stock, reserved int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[sku], f.reserved[sku]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*domain.SettlementRequested
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event *domain.SettlementRequested) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []*domain.SettlementRequested {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.SettlementRequested(nil), f.events...)
}

type fakeOrderRepo struct {
	mu       sync.Mutex
	orders   map[string]*domain.PurchaseOrder
	states   map[string]domain.State
	payments map[string]string

	saveErr   error
	updateErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   make(map[string]*domain.PurchaseOrder),
		states:   make(map[string]domain.State),
		payments: make(map[string]string),
	}
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *domain.PurchaseOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.orders[order.OrderID] = order
	f.states[order.OrderID] = order.State
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) UpdateState(ctx context.Context, id string, state domain.State, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.states[id] = state
	f.payments[id] = paymentID
	return nil
}

func (f *fakeOrderRepo) stateOf(id string) domain.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[id]
}

type stubAuthorizer struct {
	mu      sync.Mutex
	outcome domain.PaymentOutcome
	err     error
	calls   int
}

func (s *stubAuthorizer) Authorize(ctx context.Context, orderID string) (domain.PaymentOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.outcome, s.err
}
