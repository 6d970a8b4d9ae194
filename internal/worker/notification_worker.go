package worker

import (
	"context"

	"github.com/spec-kit/service-portal/internal/events"
	"github.com/spec-kit/service-portal/internal/observability"
	"github.com/spec-kit/service-portal/internal/service"
)

// StartNotificationWorker registers notification handlers and, when metrics are
// enabled, an event counter for every published event type.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, metrics *observability.Metrics) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || metrics == nil {
		return
	}
	for _, eventType := range events.AllEventTypes() {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			metrics.RecordEvent(string(event.Type))
			return nil
		})
	}
}
