package secrets

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
)

// Mode selects how the password mirror is kept on the attorney record.
type Mode string

const (
	ModePlaintext Mode = "plaintext"
	ModeBcrypt    Mode = "bcrypt"
	ModeNone      Mode = "none"
)

// Encoder turns an identity-provider password into the value stored on the record.
type Encoder struct {
	mode Mode
}

// NewEncoder returns an encoder for mode. Unknown modes fall back to ModeNone.
func NewEncoder(mode string) Encoder {
	switch Mode(mode) {
	case ModePlaintext, ModeBcrypt:
		return Encoder{mode: Mode(mode)}
	default:
		return Encoder{mode: ModeNone}
	}
}

func (e Encoder) Mode() Mode {
	return e.mode
}

// Encode returns the stored form of password. ModeNone stores nothing.
func (e Encoder) Encode(password string) (string, error) {
	switch e.mode {
	case ModePlaintext:
		return password, nil
	case ModeBcrypt:
		return Hash(password)
	default:
		return "", nil
	}
}

// Hash creates a bcrypt hash of the provided secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", fmt.Errorf("could not hash secret: %w", err)
	}
	return string(hashed), nil
}

// Verify checks if a plaintext secret matches a bcrypt hash.
func Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeValidation, "invalid secret")
		}
		return fmt.Errorf("could not verify secret: %w", err)
	}
	return nil
}
