// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var base zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// Init rebuilds the process-wide logger with the service name attached.
func Init(serviceName string) {
	base = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	zerolog.DefaultContextLogger = &base
}

// Ctx returns a logger carrying the trace identifiers of the active span,
// so log lines can be correlated with Jaeger traces.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := base
	if ctx == nil {
		return &l
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &l
}
