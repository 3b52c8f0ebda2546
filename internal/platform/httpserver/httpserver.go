// Package httpserver builds the http.Server the API binary listens on.
// Shutdown timing belongs to the caller; only connection-level limits live
// here.
package httpserver

import (
	"net/http"
	"time"
)

const readHeaderTimeout = 5 * time.Second

// New returns a server for the record API bound to addr. The read-header
// timeout keeps slow clients from pinning connections before routing.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
