// internal/service/purchase/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ValidationError rejects a malformed purchase or settlement payload. It is
// never retried: the payload will not become valid on redelivery.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// InsufficientStockError reports a SKU whose conditional reservation was
// rejected by the store. Business outcome, not an infrastructure failure;
// retrying without a stock change will never succeed.
type InsufficientStockError struct {
	SKU string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for sku %q", e.SKU)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInsufficientStock unwraps an InsufficientStockError, returning the SKU.
func IsInsufficientStock(err error) (string, bool) {
	var ins *InsufficientStockError
	if errors.As(err, &ins) {
		return ins.SKU, true
	}
	return "", false
}

// ErrOrderNotFound is returned by repositories for unknown order ids.
var ErrOrderNotFound = errors.New("order not found")
