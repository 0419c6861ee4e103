// Package notifications emails users about subscription lifecycle changes.
// Delivery happens off the request path; failures are logged and dropped.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/email"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

const defaultSendTimeout = 15 * time.Second

// Mailer sends lifecycle emails asynchronously.
type Mailer struct {
	sender       email.Sender
	logg         *logger.Logger
	supportEmail string
	timeout      time.Duration
	wg           sync.WaitGroup
}

type Params struct {
	Sender       email.Sender
	Logger       *logger.Logger
	SupportEmail string
	Timeout      time.Duration
}

func NewMailer(params Params) (*Mailer, error) {
	if params.Sender == nil {
		return nil, errors.New("email sender required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Mailer{
		sender:       params.Sender,
		logg:         params.Logger,
		supportEmail: strings.TrimSpace(params.SupportEmail),
		timeout:      timeout,
	}, nil
}

func (m *Mailer) Activated(ctx context.Context, sub models.Subscription) {
	m.dispatch(ctx, sub, activatedMessage(sub, m.supportEmail))
}

func (m *Mailer) Cancelled(ctx context.Context, sub models.Subscription) {
	m.dispatch(ctx, sub, cancelledMessage(sub, m.supportEmail))
}

// Wait blocks until in-flight sends finish.
func (m *Mailer) Wait() {
	m.wg.Wait()
}

func (m *Mailer) dispatch(ctx context.Context, sub models.Subscription, msg email.Message) {
	logCtx := m.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
		"subscription_id": sub.ID.String(),
		"email_tag":       msg.Tag,
	})
	if strings.TrimSpace(sub.UserEmail) == "" {
		m.logg.Debug(logCtx, "no recipient on subscription, email skipped")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		sendCtx, cancel := context.WithTimeout(logCtx, m.timeout)
		defer cancel()
		if err := m.sender.Send(sendCtx, msg); err != nil {
			m.logg.Error(logCtx, "subscription email failed", err)
		}
	}()
}

func planName(sub models.Subscription) string {
	if sub.Plan != nil && sub.Plan.Name != "" {
		return sub.Plan.Name
	}
	return "your subscription"
}

func activatedMessage(sub models.Subscription, support string) email.Message {
	name := planName(sub)
	next := "-"
	if sub.NextBillingDate != nil {
		next = sub.NextBillingDate.Format("January 2, 2006")
	}
	text := fmt.Sprintf("Your %s subscription is now active.\n\nMonthly price: %s\nNext billing date: %s\n",
		name, sub.Price.StringFixed(2), next)
	body := fmt.Sprintf("<p>Your <strong>%s</strong> subscription is now active.</p><p>Monthly price: %s<br>Next billing date: %s</p>",
		html.EscapeString(name), sub.Price.StringFixed(2), next)
	return email.Message{
		To:       sub.UserEmail,
		Subject:  "Subscription activated: " + name,
		TextBody: text + footer(support, false),
		HTMLBody: body + footer(support, true),
		Tag:      "subscription-activated",
	}
}

func cancelledMessage(sub models.Subscription, support string) email.Message {
	name := planName(sub)
	text := fmt.Sprintf("Your %s subscription has been cancelled.\n", name)
	body := fmt.Sprintf("<p>Your <strong>%s</strong> subscription has been cancelled.</p>", html.EscapeString(name))
	return email.Message{
		To:       sub.UserEmail,
		Subject:  "Subscription cancelled: " + name,
		TextBody: text + footer(support, false),
		HTMLBody: body + footer(support, true),
		Tag:      "subscription-cancelled",
	}
}

func footer(support string, asHTML bool) string {
	if support == "" {
		return ""
	}
	if asHTML {
		escaped := html.EscapeString(support)
		return fmt.Sprintf(`<p>Questions? Contact <a href="mailto:%s">%s</a>.</p>`, escaped, escaped)
	}
	return fmt.Sprintf("\nQuestions? Contact %s.\n", support)
}
