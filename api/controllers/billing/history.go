package billing

import (
	"net/http"

	"github.com/Teja2142/Hyrind-Backend/api/controllers/callercontext"
	"github.com/Teja2142/Hyrind-Backend/api/controllers/views"
	"github.com/Teja2142/Hyrind-Backend/api/responses"
	"github.com/Teja2142/Hyrind-Backend/api/validators"
	billingsvc "github.com/Teja2142/Hyrind-Backend/internal/billing"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/pagination"
)

type historyResponse struct {
	Results    []views.BillingHistory `json:"results"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// History lists the caller's ledger entries newest first.
// Query: status, start_date, end_date (YYYY-MM-DD, inclusive), cursor, limit.
func History(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.History(r.Context(), userID, billingsvc.HistoryFilter{
			Status:    validators.QueryString(r, "status", 32),
			StartDate: validators.QueryString(r, "start_date", 32),
			EndDate:   validators.QueryString(r, "end_date", 32),
			Cursor:    validators.QueryString(r, "cursor", 256),
			Limit:     limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, historyResponse{
			Results:    views.NewBillingHistories(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

func Entry(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id", "billing record")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Entry(r.Context(), userID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewBillingHistory(entry))
	}
}

func Statistics(svc billingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Statistics(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views.NewStatistics(stats))
	}
}
