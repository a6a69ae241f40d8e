// internal/service/purchase/domain/order.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderItem is one line of a purchase: a SKU and how many units are wanted.
type OrderItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// PurchaseOrder is the aggregate root for one purchase attempt. The caller
// owns the request until NewPurchaseOrder accepts it; from then on this is
// the authoritative copy forwarded downstream.
type PurchaseOrder struct {
	OrderID    string
	CustomerID string
	Items      []OrderItem
	State      State
	PaymentID  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPurchaseOrder validates a purchase intent and creates the aggregate.
// An absent orderId is assigned here.
func NewPurchaseOrder(orderID, customerID string, items []OrderItem) (*PurchaseOrder, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, &ValidationError{Reason: "customerId must be a non-empty string"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "items must be a non-empty list"}
	}
	for i, item := range items {
		if strings.TrimSpace(item.SKU) == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("items[%d].sku must be a non-empty string", i)}
		}
		if item.Quantity <= 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("items[%d].quantity must be a positive integer", i)}
		}
	}

	if orderID == "" {
		orderID = uuid.New().String()
	}

	now := time.Now()
	return &PurchaseOrder{
		OrderID:    orderID,
		CustomerID: customerID,
		Items:      items,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// MarkReserved records that every line item holds stock and the settlement
// request has been published.
func (o *PurchaseOrder) MarkReserved() error {
	if o.State != StateCreated {
		return fmt.Errorf("order %s cannot be reserved from state %s", o.OrderID, o.State)
	}
	o.State = StateReserved
	o.UpdatedAt = time.Now()
	return nil
}

// MarkRejected records that a conditional reservation was refused by the store.
func (o *PurchaseOrder) MarkRejected() error {
	if o.State != StateCreated {
		return fmt.Errorf("order %s cannot be rejected from state %s", o.OrderID, o.State)
	}
	o.State = StateRejected
	o.UpdatedAt = time.Now()
	return nil
}

// MarkSettled moves a reserved order into its terminal state.
func (o *PurchaseOrder) MarkSettled(outcome PaymentOutcome, paymentID string) error {
	if o.State != StateReserved {
		return fmt.Errorf("order %s cannot be settled from state %s", o.OrderID, o.State)
	}
	if outcome == OutcomeSuccess {
		o.State = StateSettledSuccess
	} else {
		o.State = StateSettledFailure
	}
	o.PaymentID = paymentID
	o.UpdatedAt = time.Now()
	return nil
}

// ToSettlementRequest builds the event that hands the order to the
// settlement stage. forceOutcome is forwarded verbatim so end-to-end
// verification can pin the result.
func (o *PurchaseOrder) ToSettlementRequest(forceOutcome PaymentOutcome) *SettlementRequested {
	return &SettlementRequested{
		OrderID:      o.OrderID,
		CustomerID:   o.CustomerID,
		Items:        o.Items,
		Timestamp:    time.Now().UTC(),
		ForceOutcome: forceOutcome,
	}
}
