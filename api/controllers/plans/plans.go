package plans

import (
	"net/http"

	"github.com/Teja2142/Hyrind-Backend/api/controllers/views"
	"github.com/Teja2142/Hyrind-Backend/api/responses"
	"github.com/Teja2142/Hyrind-Backend/api/validators"
	plansvc "github.com/Teja2142/Hyrind-Backend/internal/plans"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

func unavailable(svc plansvc.Service) error {
	if svc == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable")
	}
	return nil
}

// List returns active plans ordered by type then price. ?type=base|addon
// narrows the list.
func List(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.List(r.Context(), validators.QueryString(r, "type", 16))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewPlans(out))
	}
}

func Get(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		plan, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewPlan(plan))
	}
}

func BasePlan(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.BasePlan(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewPlan(plan))
	}
}

func Addons(svc plansvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := unavailable(svc); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Addons(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewPlans(out))
	}
}
