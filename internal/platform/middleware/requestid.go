package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"vanity/pkg/requestcontext"
)

// RequestID assigns each request a unique ID, stored in the context and
// echoed in the X-Request-Id response header. Incoming IDs from trusted
// proxies are preserved.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
