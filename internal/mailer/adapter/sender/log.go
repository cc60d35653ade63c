package sender

import (
	"context"

	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/logger"
)

// LogSender writes emails to the log instead of delivering them. It is used
// when no relay is configured.
type LogSender struct {
	log logger.Logger
}

func NewLogSender(log logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("log_sender")}
}

func (s *LogSender) Send(ctx context.Context, msg model.Message) error {
	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"bytes":   len(msg.HTMLBody),
	}).Info("email not delivered, no SMTP relay configured")
	return nil
}
