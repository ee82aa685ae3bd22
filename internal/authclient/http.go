package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxValidateBody bounds how much of the validator response is read.
const maxValidateBody = 64 << 10

// HTTPValidator calls GET {baseURL}/validate with the caller's bearer token.
type HTTPValidator struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string, client *http.Client) *HTTPValidator {
	return &HTTPValidator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Validate returns the decoded verdict. Any non-2xx status is an error, not an
// invalid verdict; callers treat both as "not authorized".
func (v *HTTPValidator) Validate(ctx context.Context, token string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/validate", nil)
	if err != nil {
		return Result{}, fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call token validator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxValidateBody))
		return Result{}, fmt.Errorf("token validator returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxValidateBody)).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode validator response: %w", err)
	}
	return result, nil
}
