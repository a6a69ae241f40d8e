// internal/service/purchase/domain/port/inventory.go
package port

import "context"

// InventoryStore is the atomic conditional-update surface of the inventory
// table. Each call is a single atomic unit of work for one SKU; there is no
// transaction across items. The store's conditional update is the only
// concurrency-control mechanism in the saga.
type InventoryStore interface {
	// Reserve increments the reserved counter by qty, guarded by
	// stock >= qty or the record not existing yet. A rejected guard returns
	// *domain.InsufficientStockError; anything else is an infrastructure
	// failure.
	Reserve(ctx context.Context, sku string, qty int) error

	// Settle releases the reservation for one (order, sku) pair and, when
	// consumeStock is set, permanently deducts the stock. The update is
	// idempotent per (orderID, sku): a redelivered settlement is skipped and
	// reported with applied=false.
	Settle(ctx context.Context, orderID, sku string, qty int, consumeStock bool) (applied bool, err error)
}
