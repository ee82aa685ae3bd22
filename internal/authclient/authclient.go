// Package authclient validates bearer tokens, either remotely against the auth
// microservice or locally from an HS256-signed JWT.
package authclient

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// Result is the validator's verdict for one token.
type Result struct {
	Valid bool   `json:"valid"`
	Role  string `json:"role"`
}

// Validator reports whether a token is valid and which role it carries.
type Validator interface {
	Validate(ctx context.Context, token string) (Result, error)
}

// NewHTTPClient returns the shared outbound client: pooled transport with a
// bounded connect phase and a bounded wait for response headers. Redirects are
// never followed; the 3xx response is handed back to the caller.
func NewHTTPClient(connectTimeout, responseTimeout time.Duration) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.ResponseHeaderTimeout = responseTimeout
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
