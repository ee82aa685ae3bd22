package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

var errMissingBearer = errors.New("missing or malformed bearer token")

// AccessChecker decides whether a bearer token carries one of the allowed roles.
type AccessChecker interface {
	CheckAccess(ctx context.Context, token string, allowedRoles []string) (role string, allowed bool, err error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	const bearerPrefix = "Bearer "
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !ok {
		return "", errMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireRoles gates a router behind the token validator. A missing or
// malformed header fails closed with 401; a token that is invalid, carries a
// role outside allowedRoles, or cannot be checked gets 403 with no body.
func RequireRoles(checker AccessChecker, allowedRoles []string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, err := BearerToken(r)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			role, allowed, err := checker.CheckAccess(ctx, token, allowedRoles)
			if err != nil {
				logger.ErrorContext(ctx, "token validation failed",
					"error", err,
					"request_id", requestID,
				)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if !allowed {
				logger.WarnContext(ctx, "access denied",
					"role", role,
					"request_id", requestID,
				)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCallerRole(ctx, role)))
		})
	}
}
