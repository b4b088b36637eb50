package worker

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// EmailSender is a stub delivery channel; it only logs what would be sent.
type EmailSender struct {
	From   string
	Logger *zap.Logger
}

func (s *EmailSender) Send(_ context.Context, intent Intent) error {
	if strings.TrimSpace(s.From) == "" {
		return nil
	}
	s.Logger.Debug("sendEmailNotification",
		zap.String("from", s.From),
		zap.String("recipient", intent.Recipient),
		zap.String("subject", intent.Subject),
		zap.String("related_entity_id", intent.RelatedEntityID))
	return nil
}

// WebhookSender is a stub delivery channel; it only logs what would be sent.
type WebhookSender struct {
	URL    string
	Logger *zap.Logger
}

func (s *WebhookSender) Send(_ context.Context, intent Intent) error {
	if strings.TrimSpace(s.URL) == "" {
		return nil
	}
	s.Logger.Debug("sendWebhookNotification",
		zap.String("url", s.URL),
		zap.String("recipient", intent.Recipient),
		zap.String("related_entity_id", intent.RelatedEntityID))
	return nil
}
