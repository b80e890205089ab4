package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-playbook-meta/internal/logging"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	// TelemetryStatusSuccess indicates the command completed without errors.
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusFailed indicates the command execution returned an error.
	TelemetryStatusFailed TelemetryStatus = "failed"
	// TelemetryStatusContextError indicates execution failed due to context cancellation or deadline.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one execution outcome handed to telemetry callbacks.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry represents an optional callback invoked after command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs command outcomes with their duration. When logger is
// nil the handler's field-enriched logger is used.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logger
		switch {
		case entry != nil && info.Fields != nil:
			entry = logging.WithFields(entry, info.Fields)
		case entry == nil:
			entry = EnsureLogger(info.Logger)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			logging.WithError(entry, info.Error).Error("command.execute.context_error", args...)
		default:
			logging.WithError(entry, info.Error).Error("command.execute.failed", args...)
		}
	}
}
