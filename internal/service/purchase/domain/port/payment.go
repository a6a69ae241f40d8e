// internal/service/purchase/domain/port/payment.go
package port

import (
	"context"

	"pulsequeue/internal/service/purchase/domain"
)

// PaymentAuthorizer decides the business outcome of a settlement. The
// production implementation stands in for a payment-gateway call; the saga
// contract is the same regardless of how the outcome is produced.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, orderID string) (domain.PaymentOutcome, error)
}
