package middleware

import (
	"net/http"
	"strings"

	"github.com/Teja2142/Hyrind-Backend/api/responses"
	pkgAuth "github.com/Teja2142/Hyrind-Backend/pkg/auth"
	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

// Auth validates a bearer token issued by the identity service and seeds the
// request context with its claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithRole(WithUserID(r.Context(), claims.UserID.String()), string(claims.Role))
			if claims.Email != "" {
				ctx = WithEmail(ctx, claims.Email)
			}
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, claims.UserID.String()), string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
