// Package httpserver builds the HTTP server with sane defaults.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the project's timeout policy. Write timeout
// stays generous because embedded SCA updates block on the bank backend.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
