// Package paymentwebhook handles server-to-server payment notifications from
// the gateway. Deliveries are authenticated by an HMAC over the raw body and
// then fed into the same activation path as the user endpoint.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/metrics"
	"github.com/Teja2142/Hyrind-Backend/pkg/razorpay"
)

const statusSuccess = "success"

type subscriptionService interface {
	Get(ctx context.Context, actor subscriptions.Actor, id uuid.UUID) (*models.Subscription, error)
	Activate(ctx context.Context, input subscriptions.ActivateInput) (*subscriptions.ActivationResult, error)
	RecordPaymentFailure(ctx context.Context, input subscriptions.PaymentFailure) (*models.Subscription, *models.BillingHistory, error)
}

type deliveryGuard interface {
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Delete(ctx context.Context, deliveryID string) error
}

// Event is the delivery body. An empty status is treated as success.
type Event struct {
	SubscriptionID string          `json:"subscription_id" validate:"required,uuid"`
	PaymentID      string          `json:"razorpay_payment_id" validate:"required"`
	OrderID        string          `json:"razorpay_order_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
}

// Result is returned to the gateway.
type Result struct {
	Message      string
	Subscription *models.Subscription
	Billing      *models.BillingHistory
	Duplicate    bool
}

type ServiceParams struct {
	Subscriptions subscriptionService
	Guard         deliveryGuard
	Secret        string
	Logger        *logger.Logger
	Metrics       *metrics.BillingMetrics
}

type Service struct {
	subs     subscriptionService
	guard    deliveryGuard
	secret   string
	logg     *logger.Logger
	metrics  *metrics.BillingMetrics
	validate *validator.Validate
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription service required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if strings.TrimSpace(params.Secret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook secret required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		subs:     params.Subscriptions,
		guard:    params.Guard,
		secret:   params.Secret,
		logg:     params.Logger,
		metrics:  params.Metrics,
		validate: validator.New(),
	}, nil
}

// Handle verifies and applies one delivery. payload must be the raw request body.
func (s *Service) Handle(ctx context.Context, payload []byte, signature string) (*Result, error) {
	if err := razorpay.VerifyWebhook(s.secret, payload, signature); err != nil {
		s.metrics.IncWebhook(metrics.WebhookBadSignature)
		if errors.Is(err, razorpay.ErrMissingSignature) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidSignature, err, "payment signature missing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidSignature, err, "payment signature verification failed")
	}

	event, subscriptionID, err := s.decode(payload)
	if err != nil {
		s.metrics.IncWebhook(metrics.WebhookError)
		return nil, err
	}
	ctx = s.logg.WithFields(s.logg.WithSubscriptionID(ctx, subscriptionID.String()), map[string]any{
		"payment_id":     event.PaymentID,
		"gateway_status": event.Status,
	})

	deliveryID := event.PaymentID + ":" + event.Status
	seen, err := s.guard.CheckAndMark(ctx, deliveryID)
	if err != nil {
		s.metrics.IncWebhook(metrics.WebhookError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	if seen {
		s.metrics.IncWebhook(metrics.WebhookDuplicate)
		s.logg.Info(ctx, "duplicate payment webhook ignored")
		sub, err := s.subs.Get(ctx, subscriptions.Actor{Admin: true}, subscriptionID)
		if err != nil {
			return nil, err
		}
		return &Result{Message: "Webhook already processed", Subscription: sub, Duplicate: true}, nil
	}

	result, err := s.apply(ctx, event, subscriptionID)
	if err != nil {
		if delErr := s.guard.Delete(ctx, deliveryID); delErr != nil {
			s.logg.Error(ctx, "failed to release webhook idempotency key", delErr)
		}
		s.metrics.IncWebhook(metrics.WebhookError)
		return nil, err
	}
	return result, nil
}

func (s *Service) apply(ctx context.Context, event Event, subscriptionID uuid.UUID) (*Result, error) {
	if event.Status != statusSuccess {
		sub, entry, err := s.subs.RecordPaymentFailure(ctx, subscriptions.PaymentFailure{
			SubscriptionID: subscriptionID,
			PaymentID:      event.PaymentID,
			OrderID:        event.OrderID,
			Amount:         event.Amount,
			GatewayStatus:  event.Status,
		})
		if err != nil {
			return nil, err
		}
		s.metrics.IncWebhook(metrics.WebhookPaymentFail)
		return &Result{Message: "Payment failure recorded", Subscription: sub, Billing: entry}, nil
	}

	activation, err := s.subs.Activate(ctx, subscriptions.ActivateInput{
		SubscriptionID: subscriptionID,
		PaymentID:      event.PaymentID,
		OrderID:        event.OrderID,
		Amount:         event.Amount,
		Source:         subscriptions.SourceWebhook,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncWebhook(metrics.WebhookProcessed)
	message := "Subscription activated successfully"
	if activation.AlreadyActive {
		message = "Subscription already active"
	}
	return &Result{Message: message, Subscription: activation.Subscription, Billing: activation.Billing}, nil
}

func (s *Service) decode(payload []byte) (Event, uuid.UUID, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return event, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload")
	}
	event.SubscriptionID = strings.TrimSpace(event.SubscriptionID)
	event.PaymentID = strings.TrimSpace(event.PaymentID)
	event.OrderID = strings.TrimSpace(event.OrderID)
	event.Status = strings.ToLower(strings.TrimSpace(event.Status))
	if event.Status == "" {
		event.Status = statusSuccess
	}

	if err := s.validate.Struct(event); err != nil {
		details := map[string]string{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				msg := "is required"
				if fe.Tag() == "uuid" {
					msg = "must be a uuid"
				}
				details[jsonName(fe.Field())] = msg
			}
		}
		return event, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid webhook payload").WithDetails(details)
	}
	id, err := uuid.Parse(event.SubscriptionID)
	if err != nil {
		return event, uuid.Nil, pkgerrors.Field("subscription_id", "must be a uuid")
	}
	return event, id, nil
}

func jsonName(field string) string {
	switch field {
	case "SubscriptionID":
		return "subscription_id"
	case "PaymentID":
		return "razorpay_payment_id"
	case "OrderID":
		return "razorpay_order_id"
	}
	return strings.ToLower(field)
}
