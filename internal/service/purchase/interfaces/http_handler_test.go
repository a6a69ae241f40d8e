// internal/service/purchase/interfaces/http_handler_test.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"pulsequeue/internal/service/purchase/application"
	"pulsequeue/internal/service/purchase/domain"
)

type stubInventory struct {
	reserveErr error
}

func (s *stubInventory) Reserve(ctx context.Context, sku string, qty int) error {
	return s.reserveErr
}

func (s *stubInventory) Settle(ctx context.Context, orderID, sku string, qty int, consumeStock bool) (bool, error) {
	return true, nil
}

type stubPublisher struct {
	err error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.SettlementRequested) error {
	return s.err
}

type stubOrderRepo struct{}

func (stubOrderRepo) Save(ctx context.Context, order *domain.PurchaseOrder) error { return nil }
func (stubOrderRepo) FindByID(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return nil, domain.ErrOrderNotFound
}
func (stubOrderRepo) UpdateState(ctx context.Context, id string, state domain.State, paymentID string) error {
	return nil
}

func newTestHandler(inventory *stubInventory, publisher *stubPublisher) http.Handler {
	service := application.NewReservationService(inventory, publisher, stubOrderRepo{}, otel.Tracer("test"))
	mux := http.NewServeMux()
	NewPurchaseHandler(service).RegisterRoutes(mux)
	return mux
}

func postPurchase(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPlaceOrderHandler_Accepted(t *testing.T) {
	handler := newTestHandler(&stubInventory{}, &stubPublisher{})

	rec := postPurchase(t, handler, `{"customerId": "cust-1", "items": [{"sku": "widget-blue", "quantity": 2}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result application.ReservationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, application.ReservationAccepted, result.Status)
	assert.NotEmpty(t, result.OrderID)
}

func TestPlaceOrderHandler_MalformedBody(t *testing.T) {
	handler := newTestHandler(&stubInventory{}, &stubPublisher{})

	rec := postPurchase(t, handler, `{"customerId": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderHandler_InvalidPayload(t *testing.T) {
	handler := newTestHandler(&stubInventory{}, &stubPublisher{})

	rec := postPurchase(t, handler, `{"customerId": "cust-1", "items": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var result application.ReservationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, application.ReservationInvalid, result.Status)
	assert.NotEmpty(t, result.Message)
}

func TestPlaceOrderHandler_InsufficientStock(t *testing.T) {
	handler := newTestHandler(&stubInventory{
		reserveErr: &domain.InsufficientStockError{SKU: "widget-blue"},
	}, &stubPublisher{})

	rec := postPurchase(t, handler, `{"customerId": "cust-1", "items": [{"sku": "widget-blue", "quantity": 99}]}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	var result application.ReservationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, application.ReservationRejected, result.Status)
	assert.Equal(t, "widget-blue", result.FailedSKU)
}

func TestPlaceOrderHandler_InfrastructureFailure(t *testing.T) {
	handler := newTestHandler(&stubInventory{reserveErr: errors.New("connection refused")}, &stubPublisher{})

	rec := postPurchase(t, handler, `{"customerId": "cust-1", "items": [{"sku": "widget-blue", "quantity": 1}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPlaceOrderHandler_PublishFailure(t *testing.T) {
	handler := newTestHandler(&stubInventory{}, &stubPublisher{err: errors.New("broker unavailable")})

	rec := postPurchase(t, handler, `{"customerId": "cust-1", "items": [{"sku": "widget-blue", "quantity": 1}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPlaceOrderHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&stubInventory{}, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/purchase", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&stubInventory{}, &stubPublisher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
