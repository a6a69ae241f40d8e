// internal/service/purchase/application/dto.go
package application

import "pulsequeue/internal/service/purchase/domain"

// PlaceOrderRequest is the inbound purchase payload from the ingestion layer.
type PlaceOrderRequest struct {
	OrderID    string             `json:"orderId,omitempty"`
	CustomerID string             `json:"customerId"`
	Items      []domain.OrderItem `json:"items"`

	// ForceOutcome is forwarded unchanged on the settlement request so
	// verification runs can pin the payment result.
	ForceOutcome domain.PaymentOutcome `json:"_testForceOutcome,omitempty"`
}

// ReservationStatus is the coarse result of a reservation attempt.
type ReservationStatus string

const (
	ReservationAccepted ReservationStatus = "ACCEPTED"
	ReservationRejected ReservationStatus = "REJECTED"
	ReservationInvalid  ReservationStatus = "INVALID"
)

// ReservationResult is returned to the ingestion layer. FailedSKU names the
// first line item whose conditional reservation was refused.
type ReservationResult struct {
	Status    ReservationStatus `json:"status"`
	OrderID   string            `json:"orderId,omitempty"`
	FailedSKU string            `json:"failedSku,omitempty"`
	Message   string            `json:"message,omitempty"`
}
