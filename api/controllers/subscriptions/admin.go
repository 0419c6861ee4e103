package subscriptions

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/api/controllers/views"
	"github.com/Teja2142/Hyrind-Backend/api/responses"
	"github.com/Teja2142/Hyrind-Backend/api/validators"
	subsvc "github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

type adminUpdateRequest struct {
	Price      *decimal.Decimal `json:"price,omitempty"`
	AdminNotes *string          `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
	Status     *string          `json:"status,omitempty" validate:"omitempty,oneof=pending active cancelled expired"`
}

// AdminList lets operators browse subscriptions across users.
func AdminList(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subs, err := svc.AdminList(r.Context(), subsvc.AdminFilter{
			UserID:   validators.QueryString(r, "user_id", 64),
			Status:   validators.QueryString(r, "status", 32),
			PlanType: validators.QueryString(r, "plan_type", 32),
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewSubscriptions(subs))
	}
}

// AdminUpdate applies operator overrides to price, notes or a terminal status.
func AdminUpdate(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "subscription")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := subsvc.AdminUpdateInput{Price: payload.Price}
		if payload.AdminNotes != nil {
			notes := validators.SanitizeString(*payload.AdminNotes, 2000)
			input.AdminNotes = &notes
		}
		if payload.Status != nil {
			status := enums.SubscriptionStatus(*payload.Status)
			input.Status = &status
		}

		sub, err := svc.AdminUpdate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewSubscription(sub))
	}
}
