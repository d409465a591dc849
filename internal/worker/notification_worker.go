package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when Redis is
// configured, the pub/sub fan-out of governance events. Fan-out failures are
// logged here since publishers never fail the mutation that raised the event.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, publisher *events.RedisPublisher, logger *zap.Logger) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if publisher != nil && dispatcher != nil {
		events.SubscribeAll(dispatcher, logFailures(publisher.Handle, logger))
	}
}

func logFailures(handler events.EventHandler, logger *zap.Logger) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		err := handler(ctx, event)
		if err != nil {
			logger.Warn("event fan-out failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err),
			)
		}
		return err
	}
}

// PendingCounter is satisfied by ApprovalService.
type PendingCounter interface {
	RefreshPendingGauge(ctx context.Context) (int, error)
}

// RunPendingGaugeRefresher refreshes the approval queue gauge every interval
// until ctx is cancelled. It refreshes once immediately.
func RunPendingGaugeRefresher(ctx context.Context, interval time.Duration, counter PendingCounter, logger *zap.Logger) {
	if counter == nil || interval <= 0 {
		return
	}
	refresh := func() {
		if _, err := counter.RefreshPendingGauge(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("refresh pending gauge failed", zap.Error(err))
		}
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
