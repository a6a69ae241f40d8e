// internal/service/purchase/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/service/purchase/application"
)

const serviceName = "reservation-service"

// PurchaseHandler wires the reservation service to the ingestion HTTP
// surface. Status contract: 200 accepted, 400 invalid request shape,
// 409 insufficient stock, 500 unexpected failure.
type PurchaseHandler struct {
	service *application.ReservationService
}

func NewPurchaseHandler(service *application.ReservationService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

// RegisterRoutes registers all routes on the service mux.
func (h *PurchaseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/purchase", h.placeOrderHandler)
}

func (h *PurchaseHandler) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "http.PlaceOrder")
	defer span.End()

	var req application.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.AddEvent("body decode failed")
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "invalid request body",
			"message": err.Error(),
		})
		return
	}

	result, err := h.service.PlaceOrder(ctx, &req)
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Msg("purchase processing failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to process order",
		})
		return
	}

	span.SetAttributes(attribute.String("reservation.status", string(result.Status)))
	switch result.Status {
	case application.ReservationInvalid:
		writeJSON(w, http.StatusBadRequest, result)
	case application.ReservationRejected:
		writeJSON(w, http.StatusConflict, result)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
