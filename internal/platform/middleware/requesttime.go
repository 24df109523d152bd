package middleware

import (
	"net/http"
	"time"

	"vanity/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context. Every registry operation reads this single
// timestamp, so one operation never observes two different clocks.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
