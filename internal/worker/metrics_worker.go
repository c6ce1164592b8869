package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuscare/complaint-service/internal/events"
	"github.com/campuscare/complaint-service/internal/observability"
)

// RegisterMetricsHandlers subscribes lifecycle events into metrics and logs.
// Status-change push notification is intentionally absent; dashboards poll.
func RegisterMetricsHandlers(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(events.EventComplaintCreated, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.ComplaintCreatedPayload); ok {
			observability.RecordComplaintSubmitted(string(payload.Category), string(payload.Priority))
			logger.Info("complaint created",
				zap.String("complaint_id", event.ComplaintID),
				zap.String("category", string(payload.Category)),
				zap.String("priority", string(payload.Priority)),
				zap.Bool("sentiment_degraded", payload.Degraded),
			)
		}
		return nil
	})

	dispatcher.Subscribe(events.EventComplaintStatusChanged, func(_ context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.ComplaintStatusChangedPayload); ok {
			observability.RecordStatusTransition(string(payload.OldStatus), string(payload.NewStatus))
			logger.Info("complaint status changed",
				zap.String("complaint_id", event.ComplaintID),
				zap.String("old_status", string(payload.OldStatus)),
				zap.String("new_status", string(payload.NewStatus)),
				zap.String("actor_id", event.ActorID),
			)
		}
		return nil
	})

	dispatcher.Subscribe(events.EventComplaintNoteAdded, func(_ context.Context, event events.Event) error {
		logger.Info("admin note added",
			zap.String("complaint_id", event.ComplaintID),
			zap.String("actor_id", event.ActorID),
		)
		return nil
	})
}
