package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/Teja2142/Hyrind-Backend/api/controllers/views"
	"github.com/Teja2142/Hyrind-Backend/api/responses"
	paymentwebhook "github.com/Teja2142/Hyrind-Backend/internal/webhooks/payment"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/razorpay"
)

const maxPayloadBytes = 64 << 10

type PaymentWebhookService interface {
	Handle(ctx context.Context, payload []byte, signature string) (*paymentwebhook.Result, error)
}

type paymentResponse struct {
	Message      string                `json:"message"`
	Duplicate    bool                  `json:"duplicate,omitempty"`
	Subscription *views.Subscription   `json:"subscription"`
	Billing      *views.BillingHistory `json:"billing"`
}

// PaymentWebhook accepts gateway payment notifications. The raw body is
// handed to the service untouched so the signature can be checked over the
// exact bytes received.
func PaymentWebhook(svc PaymentWebhookService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}
		if len(payload) > maxPayloadBytes {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payload too large"))
			return
		}

		result, err := svc.Handle(ctx, payload, r.Header.Get(razorpay.SignatureHeader))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentResponse{
			Message:      result.Message,
			Duplicate:    result.Duplicate,
			Subscription: views.NewSubscription(result.Subscription),
			Billing:      views.NewBillingHistory(result.Billing),
		})
	}
}
