package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"

	"github.com/Teja2142/Hyrind-Backend/pkg/config"
)

type postmarkSender struct {
	client *postmark.Client
	cfg    config.EmailConfig
}

// NewPostmarkSender builds a Postmark-backed sender.
func NewPostmarkSender(cfg config.EmailConfig) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("%w: sender %q", ErrInvalidConfig, cfg.From)
	}
	if _, err := mail.ParseAddress(cfg.SupportEmail); err != nil {
		return nil, fmt.Errorf("%w: support address %q", ErrInvalidConfig, cfg.SupportEmail)
	}
	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		cfg:    cfg,
	}, nil
}

func (p *postmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:          p.cfg.From,
		ReplyTo:       p.cfg.SupportEmail,
		To:            msg.To,
		Subject:       msg.Subject,
		Tag:           msg.Tag,
		HTMLBody:      msg.HTMLBody,
		TextBody:      msg.TextBody,
		MessageStream: p.cfg.MessageStream,
		TrackOpens:    true,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
