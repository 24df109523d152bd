package testutil

import (
	"net/http"
	"time"

	id "vanity/pkg/domain"
	"vanity/pkg/requestcontext"
)

// WithCaller attaches a caller account to the request context.
// This simulates what the auth middleware does for authenticated requests.
// Invalid accounts are silently ignored.
func WithCaller(req *http.Request, account string) *http.Request {
	parsed, err := id.ParseAccountID(account)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), parsed))
}

// WithTime pins the operation clock of the request, the way the request-time
// middleware does at ingress. Tests use it to step through temporal windows.
func WithTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
