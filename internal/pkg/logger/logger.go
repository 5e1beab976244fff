package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init configures the process-wide zerolog logger. Every line carries the
// service name so aggregated logs stay attributable.
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx returns a logger enriched with the trace id of the active span, so log
// lines can be joined with traces in Jaeger.
func Ctx(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &zlog.Logger
	}
	l := zlog.Logger.With().Str("trace_id", sc.TraceID().String()).Logger()
	return &l
}
