// Package identity abstracts the external identity provider that owns login
// credentials for attorneys. The service only needs to create, rename,
// re-password and enable/disable accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// Provider is the narrow contract the attorney service depends on.
type Provider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (uid string, err error)
	SetRoleClaim(ctx context.Context, uid, role string) error
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	UpdatePassword(ctx context.Context, uid, password string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}

// Kind classifies provider failures independently of the concrete backend.
type Kind string

const (
	KindEmailExists     Kind = "email_exists"
	KindUserNotFound    Kind = "user_not_found"
	KindInvalidArgument Kind = "invalid_argument"
	KindUnavailable     Kind = "unavailable"
)

// Error is a normalized identity-provider failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("identity %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
