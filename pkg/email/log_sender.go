package email

import (
	"context"

	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

// LogSender writes messages to the structured log instead of delivering them.
// Used when no Postmark token is configured.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"email_to":      msg.To,
			"email_subject": msg.Subject,
			"email_tag":     msg.Tag,
		})
		s.logg.Info(ctx, "email suppressed (no provider configured)")
	}
	return nil
}

// New picks the Postmark sender when configured and the log sender otherwise.
func New(cfg config.EmailConfig, logg *logger.Logger) (Sender, error) {
	if !cfg.Enabled() {
		return NewLogSender(logg), nil
	}
	return NewPostmarkSender(cfg)
}
