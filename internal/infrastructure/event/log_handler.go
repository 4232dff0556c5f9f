package event

import (
	"context"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogHandler writes one structured line per published event
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(l *zap.Logger) *LogHandler {
	return &LogHandler{logger: l.Named("events")}
}

// Handle logs the event with the request and trace ids of ctx
func (h *LogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.WithTraceContext(ctx, h.logger)
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	log.Info("Ledger event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil so the handler receives every event
func (h *LogHandler) EventTypes() []string {
	return nil
}
