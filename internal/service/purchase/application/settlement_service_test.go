// internal/service/purchase/application/settlement_service_test.go
package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsequeue/internal/service/purchase/domain"
)

func newSettlementFixture(allowForced bool) (*SettlementService, *fakeInventory, *stubAuthorizer, *fakeOrderRepo) {
	inventory := newFakeInventory()
	authorizer := &stubAuthorizer{outcome: domain.OutcomeSuccess}
	repo := newFakeOrderRepo()
	service := NewSettlementService(inventory, authorizer, repo, testTracer(), allowForced)
	return service, inventory, authorizer, repo
}

func settlementEvent(orderID string, force domain.PaymentOutcome, items ...domain.OrderItem) *domain.SettlementRequested {
	return &domain.SettlementRequested{
		OrderID:      orderID,
		CustomerID:   "cust-1",
		Items:        items,
		Timestamp:    time.Now().UTC(),
		ForceOutcome: force,
	}
}

// reserveFor takes the holds the reservation stage would have taken, so the
// settlement under test releases real counters.
func reserveFor(t *testing.T, inventory *fakeInventory, items ...domain.OrderItem) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, inventory.Reserve(context.Background(), item.SKU, item.Quantity))
	}
}

func TestSettle_SuccessConsumesStockAndReleasesHold(t *testing.T) {
	service, inventory, _, repo := newSettlementFixture(true)
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 2}
	reserveFor(t, inventory, item)

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeSuccess, item))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome.Status)
	assert.Equal(t, "order-1", outcome.OrderID)
	assert.NotEmpty(t, outcome.PaymentID)

	stock, reserved := inventory.snapshot("widget-blue")
	assert.Equal(t, 98, stock)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, domain.StateSettledSuccess, repo.stateOf("order-1"))
	assert.Equal(t, outcome.PaymentID, repo.payments["order-1"])
}

func TestSettle_FailureReleasesHoldWithoutConsumingStock(t *testing.T) {
	service, inventory, _, repo := newSettlementFixture(true)
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 2}
	reserveFor(t, inventory, item)

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeFailure, item))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailure, outcome.Status)
	assert.NotEmpty(t, outcome.PaymentID, "a failed payment still gets a payment id")

	stock, reserved := inventory.snapshot("widget-blue")
	assert.Equal(t, 100, stock, "failed settlement must not consume stock")
	assert.Equal(t, 0, reserved)
	assert.Equal(t, domain.StateSettledFailure, repo.stateOf("order-1"))
}

func TestSettle_MultiItemAppliesEveryLine(t *testing.T) {
	service, inventory, _, _ := newSettlementFixture(true)
	inventory.seed("widget-blue", 10)
	inventory.seed("gadget-pro", 10)
	items := []domain.OrderItem{
		{SKU: "widget-blue", Quantity: 2},
		{SKU: "gadget-pro", Quantity: 3},
	}
	reserveFor(t, inventory, items...)

	_, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeSuccess, items...))
	require.NoError(t, err)

	stockBlue, reservedBlue := inventory.snapshot("widget-blue")
	assert.Equal(t, 8, stockBlue)
	assert.Equal(t, 0, reservedBlue)
	stockPro, reservedPro := inventory.snapshot("gadget-pro")
	assert.Equal(t, 7, stockPro)
	assert.Equal(t, 0, reservedPro)
}

func TestSettle_ForcedOutcomeIgnoredWhenDisabled(t *testing.T) {
	service, inventory, authorizer, _ := newSettlementFixture(false)
	authorizer.outcome = domain.OutcomeFailure
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 1}
	reserveFor(t, inventory, item)

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeSuccess, item))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailure, outcome.Status, "forced outcome must be inert when disabled")
	assert.Equal(t, 1, authorizer.calls)
}

func TestSettle_ForcedOutcomeSkipsAuthorizer(t *testing.T) {
	service, inventory, authorizer, _ := newSettlementFixture(true)
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 1}
	reserveFor(t, inventory, item)

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeFailure, item))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailure, outcome.Status)
	assert.Equal(t, 0, authorizer.calls)
}

func TestSettle_RedeliveryIsIdempotent(t *testing.T) {
	service, inventory, _, _ := newSettlementFixture(true)
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 2}
	reserveFor(t, inventory, item)

	event := settlementEvent("order-1", domain.OutcomeSuccess, item)
	first, err := service.Settle(context.Background(), event)
	require.NoError(t, err)

	// Same event again, as the bus may redeliver it.
	second, err := service.Settle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, second.Status)
	assert.NotEqual(t, first.PaymentID, second.PaymentID)

	stock, reserved := inventory.snapshot("widget-blue")
	assert.Equal(t, 98, stock, "counters must move exactly once")
	assert.Equal(t, 0, reserved)
}

func TestSettle_StoreErrorPropagatesForRedelivery(t *testing.T) {
	service, inventory, _, _ := newSettlementFixture(true)
	inventory.settleErr = errors.New("connection refused")
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 1}

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeSuccess, item))
	require.Error(t, err)
	assert.Nil(t, outcome)
}

func TestSettle_AuthorizerErrorPropagates(t *testing.T) {
	service, inventory, authorizer, _ := newSettlementFixture(false)
	authorizer.err = errors.New("gateway timeout")
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 1}
	reserveFor(t, inventory, item)

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", "", item))
	require.Error(t, err)
	assert.Nil(t, outcome)

	stock, reserved := inventory.snapshot("widget-blue")
	assert.Equal(t, 100, stock, "no outcome, no inventory movement")
	assert.Equal(t, 1, reserved)
}

func TestSettle_LedgerFailureDoesNotFailSettlement(t *testing.T) {
	service, inventory, _, repo := newSettlementFixture(true)
	repo.updateErr = errors.New("mysql down")
	inventory.seed("widget-blue", 100)
	item := domain.OrderItem{SKU: "widget-blue", Quantity: 1}
	reserveFor(t, inventory, item)

	outcome, err := service.Settle(context.Background(), settlementEvent("order-1", domain.OutcomeSuccess, item))
	require.NoError(t, err, "ledger visibility must not fail a committed settlement")
	assert.Equal(t, domain.OutcomeSuccess, outcome.Status)
}
