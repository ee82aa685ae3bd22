package testutil

import (
	"net/http"
	"time"

	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

// WithRequestID sets the correlation ID the request middleware would assign.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithFixedTime pins requestcontext.Now for everything downstream of req.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
