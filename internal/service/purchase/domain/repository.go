// internal/service/purchase/domain/repository.go
package domain

import "context"

// OrderRepository persists purchase orders for visibility and audit. Saga
// correctness does not depend on it; the inventory store's conditional
// updates remain the single source of truth for stock.
type OrderRepository interface {
	Save(ctx context.Context, order *PurchaseOrder) error
	FindByID(ctx context.Context, id string) (*PurchaseOrder, error)
	UpdateState(ctx context.Context, id string, state State, paymentID string) error
}
