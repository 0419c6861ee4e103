package subscriptions

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/api/controllers/callercontext"
	"github.com/Teja2142/Hyrind-Backend/api/controllers/views"
	"github.com/Teja2142/Hyrind-Backend/api/responses"
	"github.com/Teja2142/Hyrind-Backend/api/validators"
	subsvc "github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

type createRequest struct {
	Plan  string           `json:"plan" validate:"required,uuid"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

type activateRequest struct {
	RazorpayPaymentID string          `json:"razorpay_payment_id" validate:"required,max=255"`
	RazorpayOrderID   string          `json:"razorpay_order_id" validate:"required,max=255"`
	RazorpaySignature string          `json:"razorpay_signature,omitempty" validate:"max=512"`
	Amount            decimal.Decimal `json:"amount"`
}

type activateResponse struct {
	Message       string                `json:"message"`
	AlreadyActive bool                  `json:"already_active"`
	Subscription  *views.Subscription   `json:"subscription"`
	Billing       *views.BillingHistory `json:"billing,omitempty"`
}

type cancelResponse struct {
	Message          string              `json:"message"`
	AlreadyCancelled bool                `json:"already_cancelled"`
	Subscription     *views.Subscription `json:"subscription"`
}

func unavailable(svc subsvc.Service) error {
	if svc == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable")
	}
	return nil
}

// List returns the caller's subscriptions with their ledger entries.
func List(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subs, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewSubscriptions(subs))
	}
}

// Create enrolls the caller in a plan. The record stays pending until a
// payment is bound by activation.
func Create(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := callercontext.ResolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		planID, err := uuid.Parse(payload.Plan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Field("plan", "must be a uuid"))
			return
		}

		sub, err := svc.Create(r.Context(), actor, subsvc.CreateInput{PlanID: planID, Price: payload.Price})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, views.NewSubscription(sub))
	}
}

func Get(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := callercontext.ResolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "subscription")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewSubscription(sub))
	}
}

// Activate binds a confirmed gateway payment to a pending subscription.
// Repeating the call for an active subscription answers 200 with
// already_active set and no new ledger entry.
func Activate(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := callercontext.ResolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "subscription")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload activateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Activate(r.Context(), subsvc.ActivateInput{
			SubscriptionID: id,
			PaymentID:      payload.RazorpayPaymentID,
			OrderID:        payload.RazorpayOrderID,
			Signature:      payload.RazorpaySignature,
			Amount:         payload.Amount,
			Actor:          &actor,
			Source:         subsvc.SourceUser,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := activateResponse{
			Message:       "Subscription activated successfully",
			AlreadyActive: result.AlreadyActive,
			Subscription:  views.NewSubscription(result.Subscription),
			Billing:       views.NewBillingHistory(result.Billing),
		}
		if result.AlreadyActive {
			resp.Message = "Subscription is already active"
		}
		responses.WriteSuccess(w, resp)
	}
}

// Cancel ends an active subscription. Cancelling twice is a no-op.
func Cancel(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := callercontext.ResolveActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "subscription")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Cancel(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := cancelResponse{
			Message:          "Subscription cancelled successfully",
			AlreadyCancelled: result.AlreadyCancelled,
			Subscription:     views.NewSubscription(result.Subscription),
		}
		if result.AlreadyCancelled {
			resp.Message = "Subscription is already cancelled"
		}
		responses.WriteSuccess(w, resp)
	}
}

func Summary(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewSummary(summary))
	}
}
