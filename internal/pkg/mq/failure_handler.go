// internal/pkg/mq/failure_handler.go
package mq

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"pulsequeue/internal/pkg/logger"
)

// Headers attached to dead-lettered messages so the DLT consumer can tell
// where a message came from and why it failed.
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderExceptionFqcn     = "x-exception-type"
	HeaderExceptionMessage  = "x-exception-message"
)

// FailureHandler forwards messages that could not be processed to a
// dead-letter topic instead of blocking the partition.
type FailureHandler struct {
	dltWriter *kafka.Writer
}

func NewFailureHandler(dltWriter *kafka.Writer) *FailureHandler {
	return &FailureHandler{dltWriter: dltWriter}
}

// Handle copies the failed message to the DLT, annotated with its origin and
// the processing error. A failure to dead-letter is logged as critical; the
// caller still commits the offset, so this is the last line of defense.
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, processingErr error) {
	headers := append(msg.Headers,
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderExceptionFqcn, Value: []byte(fmt.Sprintf("%T", errors.Cause(processingErr)))},
		kafka.Header{Key: HeaderExceptionMessage, Value: []byte(processingErr.Error())},
	)

	dltMsg := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
	if err := h.dltWriter.WriteMessages(ctx, dltMsg); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("original_topic", msg.Topic).
			Int64("original_offset", msg.Offset).
			Msg("🚨 CRITICAL: failed to forward message to DLT, message is lost")
		return
	}
	logger.Ctx(ctx).Warn().
		Str("original_topic", msg.Topic).
		Int64("original_offset", msg.Offset).
		Err(processingErr).
		Msg("Message forwarded to DLT")
}

// Close closes the underlying DLT writer.
func (h *FailureHandler) Close() error {
	return h.dltWriter.Close()
}
