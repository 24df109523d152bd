// Package httpserver constructs the process HTTP server with the timeouts
// the registry API needs.
package httpserver

import (
	"net/http"
	"time"
)

// ShutdownTimeout bounds graceful shutdown: long enough for an in-flight
// purchase to settle, short enough that a redeploy is not held hostage by
// an idle keep-alive.
const ShutdownTimeout = 10 * time.Second

// New builds the registry's HTTP server. Every endpoint is a small JSON
// exchange, so the write timeout is deliberately tight; streaming responses
// would need a different server.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
