// internal/service/purchase/application/settlement_service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/metrics"
	"pulsequeue/internal/service/purchase/domain"
	"pulsequeue/internal/service/purchase/domain/port"
)

// SettlementService is the second saga stage: it decides the payment outcome
// and applies the compensating inventory updates. The reserved hold is always
// released; stock is consumed only on success.
type SettlementService struct {
	inventory  port.InventoryStore
	authorizer port.PaymentAuthorizer
	orderRepo  domain.OrderRepository
	tracer     trace.Tracer

	// allowForcedOutcome honors the _testForceOutcome field on inbound
	// events. Off in production, so the field is inert on real traffic.
	allowForcedOutcome bool
}

func NewSettlementService(inventory port.InventoryStore, authorizer port.PaymentAuthorizer, orderRepo domain.OrderRepository, tracer trace.Tracer, allowForcedOutcome bool) *SettlementService {
	return &SettlementService{
		inventory:          inventory,
		authorizer:         authorizer,
		orderRepo:          orderRepo,
		tracer:             tracer,
		allowForcedOutcome: allowForcedOutcome,
	}
}

// Settle processes one settlement request and returns the terminal outcome
// with a freshly minted payment id. Infrastructure errors are returned to
// the caller so the bus's at-least-once redelivery governs the retry; the
// per-(order, sku) idempotency marker in the store makes those redeliveries
// safe for items that were already updated.
func (s *SettlementService) Settle(ctx context.Context, event *domain.SettlementRequested) (*domain.SettlementOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Settle", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("order.id", event.OrderID),
		attribute.Int("order.item_count", len(event.Items)),
	)

	outcome, err := s.decideOutcome(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment authorization failed")
		return nil, errors.Wrapf(err, "authorize payment for order %s", event.OrderID)
	}
	success := outcome == domain.OutcomeSuccess
	span.SetAttributes(attribute.String("payment.outcome", string(outcome)))
	logger.Ctx(ctx).Info().
		Str("order_id", event.OrderID).
		Str("outcome", string(outcome)).
		Msg("payment outcome decided")

	for _, item := range event.Items {
		// Always release the hold; consume stock only on success. Each SKU
		// is an independent atomic update, same as during reservation.
		applied, err := s.inventory.Settle(ctx, event.OrderID, item.SKU, item.Quantity, success)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "inventory settlement failed")
			return nil, errors.Wrapf(err, "settle sku %s for order %s", item.SKU, event.OrderID)
		}
		if !applied {
			metrics.DuplicateSettlements.Inc()
			logger.Ctx(ctx).Info().
				Str("order_id", event.OrderID).
				Str("sku", item.SKU).
				Msg("settlement already applied for this item, skipping redelivered update")
			continue
		}
		logger.Ctx(ctx).Debug().
			Str("order_id", event.OrderID).
			Str("sku", item.SKU).
			Int("quantity", item.Quantity).
			Bool("stock_consumed", success).
			Msg("reservation released")
	}

	result := &domain.SettlementOutcome{
		OrderID:   event.OrderID,
		PaymentID: uuid.New().String(),
		Status:    outcome,
	}

	state := domain.StateSettledFailure
	if success {
		state = domain.StateSettledSuccess
	}
	if err := s.orderRepo.UpdateState(ctx, event.OrderID, state, result.PaymentID); err != nil {
		// Ledger visibility only; the inventory updates above already committed.
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Msg("failed to record settlement in ledger")
	}

	metrics.SettlementsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	span.AddEvent("settlement complete")

	return result, nil
}

func (s *SettlementService) decideOutcome(ctx context.Context, event *domain.SettlementRequested) (domain.PaymentOutcome, error) {
	if s.allowForcedOutcome && event.ForceOutcome != "" {
		logger.Ctx(ctx).Warn().
			Str("order_id", event.OrderID).
			Str("forced", string(event.ForceOutcome)).
			Msg("using forced payment outcome")
		return event.ForceOutcome, nil
	}
	return s.authorizer.Authorize(ctx, event.OrderID)
}
