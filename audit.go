package phisec

import (
	"context"
	"log/slog"
	"time"
)

// AuditHook is an ObservabilityHook that writes a structured audit trail
// with log/slog. It records operations, outcomes, durations, and key
// versions; it never receives payloads, key material, or token strings, so
// it cannot leak them.
type AuditHook struct {
	logger *slog.Logger
}

// NewAuditHook creates an AuditHook writing to the given logger. A nil
// logger uses slog.Default().
func NewAuditHook(logger *slog.Logger) *AuditHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHook{logger: logger.With(slog.String("component", "phisec"))}
}

func (h *AuditHook) OnProcessStart(ctx context.Context, operation string, metadata map[string]interface{}) {
	h.logger.DebugContext(ctx, "operation started",
		slog.String("operation", operation),
	)
}

func (h *AuditHook) OnProcessComplete(ctx context.Context, operation string, duration time.Duration, err error, metadata map[string]interface{}) {
	attrs := []any{
		slog.String("operation", operation),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level := slog.LevelWarn
		if IsSecurityIncident(err) {
			level = slog.LevelError
			attrs = append(attrs, slog.Bool("security_incident", true))
		}
		h.logger.Log(ctx, level, "operation failed", attrs...)
		return
	}
	h.logger.InfoContext(ctx, "operation completed", attrs...)
}

func (h *AuditHook) OnError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	attrs := []any{
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	for k, v := range metadata {
		if s, ok := v.(string); ok {
			attrs = append(attrs, slog.String(k, s))
		}
	}
	h.logger.ErrorContext(ctx, "operation error", attrs...)
}

func (h *AuditHook) OnKeyOperation(ctx context.Context, operation string, keyVersion uint16, metadata map[string]interface{}) {
	h.logger.InfoContext(ctx, "key operation",
		slog.String("operation", operation),
		slog.Int("key_version", int(keyVersion)),
	)
}
