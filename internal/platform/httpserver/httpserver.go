package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
// The write timeout leaves room for two backend fetches per request.
func New(addr string, handler http.Handler, backendTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      backendTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
