// Package email sends transactional billing emails.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	ErrFailedToSend  = errors.New("email: failed to send")
	ErrInvalidConfig = errors.New("email: invalid config")
	ErrInvalidParams = errors.New("email: invalid params")
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	Tag      string
}

// Validate checks the recipient and that there is something to send.
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(m.To)); err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrInvalidParams, m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if m.HTMLBody == "" && m.TextBody == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}
