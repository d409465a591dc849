package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/leaguedesk/roster-service/internal/config"
	"github.com/leaguedesk/roster-service/internal/events"
)

// NotificationService handles emitting notifications for governance events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTagChangeQueued, n.handleChangeQueued)
	n.dispatcher.Subscribe(events.EventTagChangeApproved, n.handleChangeResolved)
	n.dispatcher.Subscribe(events.EventTagChangeRejected, n.handleChangeResolved)
	n.dispatcher.Subscribe(events.EventTagsApplied, n.handleRegistryChange)
	n.dispatcher.Subscribe(events.EventTagRenamed, n.handleRegistryChange)
	n.dispatcher.Subscribe(events.EventTagDeleted, n.handleRegistryChange)
	n.dispatcher.Subscribe(events.EventTagCreated, n.handleRegistryChange)
}

func (n *NotificationService) handleChangeQueued(ctx context.Context, event events.Event) error {
	n.logger.Info("TagChangeQueued",
		zap.String("staff_id", event.Subject),
		zap.String("actor", event.Actor.Name),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// handleChangeResolved tells the submitting club how its request ended.
func (n *NotificationService) handleChangeResolved(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.String("staff_id", event.Subject),
		zap.String("resolved_by", event.Actor.Name),
	}
	if payload, ok := event.Payload.(events.TagChangeResolvedPayload); ok {
		fields = append(fields,
			zap.String("request_id", payload.RequestID),
			zap.String("requesting_actor", payload.RequestingActor),
			zap.String("note", payload.Note))
	}
	n.logger.Info("TagChangeResolved", fields...)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRegistryChange(ctx context.Context, event events.Event) error {
	n.logger.Info("TagRegistryChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.String("actor", event.Actor.Name),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}
