package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// Upstream proxies may forward their own id; anything that could break a log
// line or exceed a sane length is replaced.
var acceptedRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

const ctxRequestID contextKey = "request_id"

// RequestID propagates a caller supplied request id or mints one, echoes it
// on the response and binds it to the request logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if !acceptedRequestID.MatchString(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
