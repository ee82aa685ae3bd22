package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

// maxExternalBody bounds how much of an outbound response is returned.
const maxExternalBody = 1 << 20

// Access-check outcomes recorded in metrics.
const (
	accessAllowed = "allowed"
	accessDenied  = "denied"
	accessInvalid = "invalid"
	accessError   = "error"
)

// CheckAccess asks the token validator about token and reports the caller's
// role and whether it is in allowedRoles. Validator failures are returned as
// upstream errors; callers treat them as not authorized.
func (s *Service) CheckAccess(ctx context.Context, token string, allowedRoles []string) (string, bool, error) {
	result, err := s.validator.Validate(ctx, token)
	if err != nil {
		s.metrics.IncrementAccessCheck(accessError)
		return "", false, dErrors.Wrap(err, dErrors.CodeUpstream, "token validation failed")
	}
	if !result.Valid {
		s.metrics.IncrementAccessCheck(accessInvalid)
		return result.Role, false, nil
	}
	if !slices.Contains(allowedRoles, result.Role) {
		s.metrics.IncrementAccessCheck(accessDenied)
		return result.Role, false, nil
	}
	s.metrics.IncrementAccessCheck(accessAllowed)
	return result.Role, true, nil
}

// ValidateTokenAndRoles is true iff the token is valid and its role is one of
// allowedRoles.
func (s *Service) ValidateTokenAndRoles(ctx context.Context, token string, allowedRoles []string) (bool, error) {
	_, allowed, err := s.CheckAccess(ctx, token, allowedRoles)
	return allowed, err
}

// SafeExternalRequest fetches rawURL only when it is a well-formed https URL
// whose origin is allow-listed. Rejected URLs never reach the network.
func (s *Service) SafeExternalRequest(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !s.isAllowedURL(rawURL) {
		s.logger.WarnContext(ctx, "outbound request blocked",
			"url", rawURL,
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", dErrors.New(dErrors.CodeSecurity, "URL no permitida o inválida")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeSecurity, "URL no permitida o inválida")
	}
	resp, err := s.outbound.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "Error en la solicitud externa")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExternalBody))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "Error en la solicitud externa")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", dErrors.Wrap(fmt.Errorf("status %d", resp.StatusCode), dErrors.CodeUpstream, "Error en la solicitud externa")
	}
	return string(body), nil
}

// isAllowedURL requires https, a structurally valid URL, no embedded
// credentials, and an allow-listed scheme://host origin.
func (s *Service) isAllowedURL(rawURL string) bool {
	if rawURL == "" || !govalidator.IsURL(rawURL) {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || u.User != nil {
		return false
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return false
	}
	origin := strings.ToLower(u.Scheme + "://" + u.Host)
	_, ok := s.allowedOrigins[origin]
	return ok
}
