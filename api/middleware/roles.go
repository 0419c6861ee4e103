package middleware

import (
	"fmt"
	"net/http"

	"github.com/Teja2142/Hyrind-Backend/api/responses"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

// RequireRole rejects callers whose token role ranks below role. Unknown
// roles never pass.
func RequireRole(role enums.MemberRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := enums.MemberRole(RoleFromContext(r.Context()))
			if !caller.Allows(role) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s role required", role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
