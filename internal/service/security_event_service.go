package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/events"
)

// SecurityEventService writes security events to the structured log so
// login failures, revocations and quota rejections leave an audit trail.
type SecurityEventService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSecurityEventService builds the service.
func NewSecurityEventService(dispatcher events.Dispatcher, logger *zap.Logger) *SecurityEventService {
	return &SecurityEventService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes the audit logger to security events.
func (s *SecurityEventService) RegisterHandlers() {
	for _, eventType := range []events.EventType{
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventTokenRevoked,
		events.EventPasswordChanged,
		events.EventPermissionDenied,
		events.EventQuotaExceeded,
	} {
		s.dispatcher.Subscribe(eventType, s.logEvent)
	}
}

func (s *SecurityEventService) logEvent(_ context.Context, event events.Event) error {
	s.logger.Info("security event",
		zap.String("type", string(event.Type)),
		zap.String("subject", event.SubjectID),
		zap.Any("payload", event.Payload),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
