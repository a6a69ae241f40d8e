// internal/service/purchase/domain/payment.go
package domain

// PaymentOutcome is the business result of settling a purchase. FAILURE is a
// valid terminal state of the saga, not an error.
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "SUCCESS"
	OutcomeFailure PaymentOutcome = "FAILURE"
)

// SettlementOutcome is the terminal artifact of the saga. It is handed to
// logging and metrics for visibility, never persisted by the core.
type SettlementOutcome struct {
	OrderID   string         `json:"orderId"`
	PaymentID string         `json:"paymentId"`
	Status    PaymentOutcome `json:"status"`
}
