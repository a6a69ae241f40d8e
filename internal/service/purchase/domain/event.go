// internal/service/purchase/domain/event.go
package domain

import (
	"encoding/json"
	"time"
)

// SettlementRequested is published after every line item of a purchase has
// been reserved. It carries the full order identity so the settlement stage
// needs no other state.
type SettlementRequested struct {
	OrderID    string      `json:"orderId"`
	CustomerID string      `json:"customerId"`
	Items      []OrderItem `json:"items"`
	Timestamp  time.Time   `json:"timestamp"`

	// ForceOutcome pins the settlement result for end-to-end verification.
	// The settlement service ignores it unless explicitly enabled.
	ForceOutcome PaymentOutcome `json:"_testForceOutcome,omitempty"`
}

// DecodeSettlementEvent normalizes the two wire shapes a settlement request
// arrives in: the bare payload, or the payload wrapped under a "detail"
// field by the bus. Business logic downstream never re-inspects the wire
// shape. A payload whose items field is missing or not an array is rejected
// with a ValidationError.
func DecodeSettlementEvent(data []byte) (*SettlementRequested, error) {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	payload := data
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ValidationError{Reason: "settlement event is not valid JSON: " + err.Error()}
	}
	if len(envelope.Detail) > 0 && string(envelope.Detail) != "null" {
		payload = envelope.Detail
	}

	var probe struct {
		OrderID      string          `json:"orderId"`
		CustomerID   string          `json:"customerId"`
		Items        json.RawMessage `json:"items"`
		Timestamp    time.Time       `json:"timestamp"`
		ForceOutcome PaymentOutcome  `json:"_testForceOutcome"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, &ValidationError{Reason: "settlement payload is malformed: " + err.Error()}
	}
	if len(probe.Items) == 0 || string(probe.Items) == "null" {
		return nil, &ValidationError{Reason: "settlement event missing items array"}
	}

	var items []OrderItem
	if err := json.Unmarshal(probe.Items, &items); err != nil {
		return nil, &ValidationError{Reason: "settlement event items is not an array"}
	}

	return &SettlementRequested{
		OrderID:      probe.OrderID,
		CustomerID:   probe.CustomerID,
		Items:        items,
		Timestamp:    probe.Timestamp,
		ForceOutcome: probe.ForceOutcome,
	}, nil
}
