package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/events"
)

// AuditService writes user lifecycle events to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		if eventType == events.EventUserLoginFailed {
			a.dispatcher.Subscribe(eventType, a.handleLoginFailed)
			continue
		}
		a.dispatcher.Subscribe(eventType, a.handleLifecycle)
	}
}

func (a *AuditService) handleLifecycle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	email := ""
	if payload, ok := event.Payload.(events.LoginFailedPayload); ok {
		email = payload.Email
	}
	a.logger.Warn(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("email", email),
		zap.Time("timestamp", event.Timestamp))
	return nil
}
