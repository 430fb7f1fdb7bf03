// Package request provides middleware that stamps every request with a
// correlation ID and a single request-scoped "now".
package request

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"backoffice/pkg/requestcontext"
)

// HeaderRequestID is read from the caller when present and echoed back.
const HeaderRequestID = "X-Request-ID"

// maxInboundIDLen bounds caller-supplied IDs before they reach logs.
const maxInboundIDLen = 128

// Middleware assigns the request ID and request time.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" || len(reqID) > maxInboundIDLen {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)

		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID set by Middleware.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
