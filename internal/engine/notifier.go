package engine

import (
	"context"

	"github.com/arbiterhq/arbiter/internal/log"
)

// Notifier receives safety block notifications. Downstream integrations
// (chat, ticketing, pager) implement this; the engine never knows who
// listens.
type Notifier interface {
	NotifyBlocked(ctx context.Context, task, reason string)
}

// LogNotifier surfaces block notifications through the structured logger.
// It is the default when no external notifier is wired.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyBlocked implements Notifier.NotifyBlocked
func (n *LogNotifier) NotifyBlocked(_ context.Context, task, reason string) {
	n.logger.Warn("decision blocked by safety review",
		"task", task,
		"reason", reason,
	)
}
