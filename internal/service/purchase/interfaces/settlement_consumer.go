// internal/service/purchase/interfaces/settlement_consumer.go
package interfaces

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/mq"
	"pulsequeue/internal/service/purchase/application"
	"pulsequeue/internal/service/purchase/domain"
)

// In-process retries for infrastructure failures before a message is
// dead-lettered. Malformed events skip straight to the DLT.
const (
	maxProcessAttempts = 3
	retryBackoff       = time.Second
)

// SettlementConsumerAdapter listens for settlement requests and drives the
// settlement application service. The consumer must not assume it is the
// first or only invocation for a given request; delivery is at-least-once.
type SettlementConsumerAdapter struct {
	reader         *kafka.Reader
	service        *application.SettlementService
	failureHandler *mq.FailureHandler
	wg             sync.WaitGroup
	stopped        bool
}

func NewSettlementConsumerAdapter(reader *kafka.Reader, service *application.SettlementService, failureHandler *mq.FailureHandler) *SettlementConsumerAdapter {
	return &SettlementConsumerAdapter{
		reader:         reader,
		service:        service,
		failureHandler: failureHandler,
	}
}

// Start begins the consume loop. Long-running; returns immediately.
func (a *SettlementConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().
			Str("topic", a.reader.Config().Topic).
			Msg("✅ Settlement consumer started")
		for {
			if a.stopped {
				return
			}
			// FetchMessage instead of ReadMessage so the offset commit stays
			// under our control.
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 Settlement consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not fetch message, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractTraceContext(ctx, msg)
			if processingErr := a.processWithRetry(msgCtx, msg); processingErr != nil {
				a.failureHandler.Handle(msgCtx, msg, processingErr)
			}

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(msgCtx).Error().Err(err).Msg("failed to commit offset")
			}
		}
	}()
}

// Stop drains the consume loop.
func (a *SettlementConsumerAdapter) Stop(ctx context.Context) {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Info().Msg("✅ Settlement consumer stopped")
}

// processWithRetry decodes and settles one message. Infrastructure failures
// are retried in place; the idempotency marker in the store makes a partial
// retry safe. Validation failures are returned at once so the message goes
// to the DLT instead of burning retries on a payload that cannot heal.
func (a *SettlementConsumerAdapter) processWithRetry(ctx context.Context, msg kafka.Message) error {
	event, err := domain.DecodeSettlementEvent(msg.Value)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Int64("offset", msg.Offset).
			Msg("rejecting malformed settlement event")
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxProcessAttempts; attempt++ {
		outcome, err := a.service.Settle(ctx, event)
		if err == nil {
			logger.Ctx(ctx).Info().
				Str("order_id", outcome.OrderID).
				Str("payment_id", outcome.PaymentID).
				Str("status", string(outcome.Status)).
				Msg("settlement processed")
			return nil
		}
		lastErr = err
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Int("attempt", attempt).
			Msg("settlement attempt failed")
		if attempt < maxProcessAttempts {
			time.Sleep(retryBackoff * time.Duration(attempt))
		}
	}
	return lastErr
}
