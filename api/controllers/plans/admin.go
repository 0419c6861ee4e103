package plans

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/api/controllers/views"
	"github.com/Teja2142/Hyrind-Backend/api/responses"
	"github.com/Teja2142/Hyrind-Backend/api/validators"
	plansvc "github.com/Teja2142/Hyrind-Backend/internal/plans"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

type createRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	PlanType    string          `json:"plan_type" validate:"required,oneof=base addon"`
	Description string          `json:"description" validate:"max=2000"`
	BasePrice   decimal.Decimal `json:"base_price"`
	IsMandatory bool            `json:"is_mandatory"`
	Features    []string        `json:"features" validate:"max=50,dive,max=200"`
}

type updateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	IsMandatory *bool            `json:"is_mandatory,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Features    []string         `json:"features,omitempty" validate:"omitempty,max=50,dive,max=200"`
}

func AdminCreate(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := svc.Create(r.Context(), plansvc.CreateInput{
			Name:        validators.SanitizeString(payload.Name, 100),
			Type:        enums.PlanType(payload.PlanType),
			Description: validators.SanitizeString(payload.Description, 2000),
			Price:       payload.BasePrice,
			Mandatory:   payload.IsMandatory,
			Features:    payload.Features,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, views.NewPlan(plan))
	}
}

func AdminUpdate(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "plan")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := svc.Update(r.Context(), id, plansvc.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.BasePrice,
			Mandatory:   payload.IsMandatory,
			Active:      payload.IsActive,
			Features:    payload.Features,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewPlan(plan))
	}
}

// AdminDeactivate hides a plan from the catalog. Existing subscriptions keep
// their reference.
func AdminDeactivate(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "plan")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewPlan(plan))
	}
}
