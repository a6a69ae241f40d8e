// internal/service/purchase/domain/port/publisher.go
package port

import (
	"context"

	"pulsequeue/internal/service/purchase/domain"
)

// SettlementPublisher hands a settlement request to the event bus. Delivery
// downstream is at-least-once and unordered across orders.
type SettlementPublisher interface {
	Publish(ctx context.Context, event *domain.SettlementRequested) error
}
