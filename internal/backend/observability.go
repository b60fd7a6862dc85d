package backend

import (
	"errors"
	"log/slog"
	"time"
)

// CallEvent records metadata about a single office API call.
type CallEvent struct {
	Method    string
	Route     string
	Status    int
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about office API calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a slog logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"method", event.Method,
		"route", event.Route,
		"status", event.Status,
		"attempts", event.Attempts,
		"latency_ms", event.LatencyMs,
	}
	if event.Success {
		o.logger.Debug("office_api_call", attrs...)
		return
	}
	attrs = append(attrs, "error_code", event.ErrorCode)
	// Cancellations are expected on project switches.
	if event.ErrorCode == "CANCELED" {
		o.logger.Debug("office_api_call", attrs...)
		return
	}
	o.logger.Warn("office_api_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

func errorCode(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case IsCancellation(err):
		return "CANCELED"
	case errors.Is(err, ErrOutcomeUnknown):
		return "OUTCOME_UNKNOWN"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrNetwork):
		return "UNAVAILABLE"
	case errors.As(err, &apiErr):
		if apiErr.Code != "" {
			return apiErr.Code
		}
		return "HTTP_ERROR"
	default:
		return "UNKNOWN"
	}
}

func latencySince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
