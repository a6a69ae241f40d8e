// internal/service/purchase/application/reservation_service.go
package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/metrics"
	"pulsequeue/internal/service/purchase/domain"
	"pulsequeue/internal/service/purchase/domain/port"
)

// ReservationService is the first saga stage: it validates a purchase
// request, takes a stock hold per line item and publishes the settlement
// request that drives the second stage.
type ReservationService struct {
	inventory port.InventoryStore
	publisher port.SettlementPublisher
	orderRepo domain.OrderRepository
	tracer    trace.Tracer
}

func NewReservationService(inventory port.InventoryStore, publisher port.SettlementPublisher, orderRepo domain.OrderRepository, tracer trace.Tracer) *ReservationService {
	return &ReservationService{
		inventory: inventory,
		publisher: publisher,
		orderRepo: orderRepo,
		tracer:    tracer,
	}
}

// PlaceOrder reserves stock for every line item and publishes the settlement
// request. Validation failures and refused reservations come back as a
// structured result with a nil error; only infrastructure failures return a
// non-nil error, so the caller can map them to a retryable response.
func (s *ReservationService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*ReservationResult, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.PlaceOrder")
	defer span.End()

	order, err := domain.NewPurchaseOrder(req.OrderID, req.CustomerID, req.Items)
	if err != nil {
		span.AddEvent("validation rejected")
		logger.Ctx(ctx).Warn().Err(err).Msg("purchase request rejected by validation")
		metrics.ReservationsTotal.WithLabelValues(string(ReservationInvalid)).Inc()
		return &ReservationResult{Status: ReservationInvalid, Message: err.Error()}, nil
	}

	span.SetAttributes(
		attribute.String("order.id", order.OrderID),
		attribute.String("customer.id", order.CustomerID),
		attribute.Int("order.item_count", len(order.Items)),
	)

	// Items are reserved sequentially in request order; each SKU is an
	// independent atomic unit of work. The first refused guard aborts the
	// request without reversing holds already taken for earlier lines.
	for _, item := range order.Items {
		if err := s.inventory.Reserve(ctx, item.SKU, item.Quantity); err != nil {
			if sku, ok := domain.IsInsufficientStock(err); ok {
				span.AddEvent("reservation rejected", trace.WithAttributes(attribute.String("sku", sku)))
				logger.Ctx(ctx).Info().
					Str("order_id", order.OrderID).
					Str("sku", sku).
					Int("quantity", item.Quantity).
					Msg("reservation rejected: insufficient stock")

				if markErr := order.MarkRejected(); markErr == nil {
					s.saveBestEffort(ctx, order)
				}
				metrics.ReservationsTotal.WithLabelValues(string(ReservationRejected)).Inc()
				return &ReservationResult{
					Status:    ReservationRejected,
					OrderID:   order.OrderID,
					FailedSKU: sku,
					Message:   err.Error(),
				}, nil
			}

			span.RecordError(err)
			span.SetStatus(codes.Error, "inventory store unavailable")
			return nil, errors.Wrapf(err, "reserve stock for sku %s", item.SKU)
		}
		span.AddEvent("item reserved", trace.WithAttributes(
			attribute.String("sku", item.SKU),
			attribute.Int("quantity", item.Quantity),
		))
	}

	event := order.ToSettlementRequest(req.ForceOutcome)
	if err := s.publisher.Publish(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish settlement request")
		return nil, errors.Wrapf(err, "publish settlement request for order %s", order.OrderID)
	}
	span.AddEvent("settlement request published")

	if err := order.MarkReserved(); err != nil {
		// Unreachable from CREATED; kept loud in case the flow changes.
		logger.Ctx(ctx).Error().Err(err).Str("order_id", order.OrderID).Msg("state transition failed")
	}
	s.saveBestEffort(ctx, order)

	logger.Ctx(ctx).Info().
		Str("order_id", order.OrderID).
		Int("items", len(order.Items)).
		Msg("all items reserved, settlement request published")
	metrics.ReservationsTotal.WithLabelValues(string(ReservationAccepted)).Inc()

	return &ReservationResult{Status: ReservationAccepted, OrderID: order.OrderID}, nil
}

// saveBestEffort writes the order to the visibility ledger. The reservation
// is already externally visible through the inventory store and the bus, so
// a ledger failure is logged rather than failing the request.
func (s *ReservationService) saveBestEffort(ctx context.Context, order *domain.PurchaseOrder) {
	if err := s.orderRepo.Save(ctx, order); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", order.OrderID).
			Str("state", string(order.State)).
			Msg("failed to record order in ledger")
	}
}
