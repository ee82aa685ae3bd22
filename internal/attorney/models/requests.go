package models

import (
	"encoding/json"
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
)

// MinPasswordLength matches the identity provider's lower bound. The document
// number doubles as the initial password, so it is held to the same bound.
const MinPasswordLength = 6

// Profile is the validated set of caller-editable fields.
type Profile struct {
	DocumentType   string
	DocumentNumber string
	Names          string
	Surnames       string
	Sex            string
	BirthDate      Date
	Baptism        *Date
	FirstCommunion *Date
	Confirmation   *Date
	Marriage       *Date
	Relationship   string
	Email          string
	Cellphone      string
	Address        string
}

// AttorneyRequest is the create/update body. Identity, role, status, password
// and timestamps are accepted on the wire for compatibility but ignored.
type AttorneyRequest struct {
	ID             string  `json:"id,omitempty"`
	UID            string  `json:"uid,omitempty"`
	DocumentType   string  `json:"documentType"`
	DocumentNumber string  `json:"documentNumber"`
	Names          string  `json:"names"`
	Surnames       string  `json:"surnames"`
	Sex            string  `json:"sex"`
	BirthDate      string  `json:"birth_date"`
	Baptism        *string `json:"baptism,omitempty"`
	FirstCommunion *string `json:"first_Communion,omitempty"`
	Confirmation   *string `json:"confirmation,omitempty"`
	Marriage       *string `json:"marriage,omitempty"`
	Relationship   string  `json:"relationship"`
	Email          string  `json:"email"`
	Password       string  `json:"password,omitempty"`
	Cellphone      string  `json:"cellphone"`
	Address        string  `json:"address"`
	Role           string  `json:"role,omitempty"`
	Status         string  `json:"status,omitempty"`
}

func (r *AttorneyRequest) Normalize() {
	if r == nil {
		return
	}
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	r.DocumentNumber = strings.TrimSpace(r.DocumentNumber)
	r.Names = strings.TrimSpace(r.Names)
	r.Surnames = strings.TrimSpace(r.Surnames)
	r.Sex = strings.TrimSpace(r.Sex)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Relationship = strings.TrimSpace(r.Relationship)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Cellphone = strings.TrimSpace(r.Cellphone)
	r.Address = strings.TrimSpace(r.Address)
	for _, d := range []*string{r.Baptism, r.FirstCommunion, r.Confirmation, r.Marriage} {
		if d != nil {
			*d = strings.TrimSpace(*d)
		}
	}
}

// Follows validation order: Size -> Required -> Syntax. Only the fields the
// identity provider and the date columns depend on are checked.
func (r *AttorneyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if !govalidator.StringLength(r.Email, "0", "255") {
		return dErrors.New(dErrors.CodeValidation, "email must be 255 characters or less")
	}
	if !govalidator.StringLength(r.DocumentNumber, "0", "20") {
		return dErrors.New(dErrors.CodeValidation, "documentNumber must be 20 characters or less")
	}
	if !govalidator.StringLength(r.Names, "0", "120") || !govalidator.StringLength(r.Surnames, "0", "120") {
		return dErrors.New(dErrors.CodeValidation, "names and surnames must be 120 characters or less")
	}

	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.DocumentNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "documentNumber is required")
	}

	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if len(r.DocumentNumber) < MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "documentNumber must be at least 6 characters")
	}
	if _, err := ParseDate(r.BirthDate); err != nil {
		return err
	}
	for _, d := range []*string{r.Baptism, r.FirstCommunion, r.Confirmation, r.Marriage} {
		if d == nil {
			continue
		}
		if _, err := ParseDate(*d); err != nil {
			return err
		}
	}
	return nil
}

// Profile converts a validated request into domain fields.
func (r *AttorneyRequest) Profile() Profile {
	return Profile{
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Names:          r.Names,
		Surnames:       r.Surnames,
		Sex:            r.Sex,
		BirthDate:      Date(r.BirthDate),
		Baptism:        optionalDate(r.Baptism),
		FirstCommunion: optionalDate(r.FirstCommunion),
		Confirmation:   optionalDate(r.Confirmation),
		Marriage:       optionalDate(r.Marriage),
		Relationship:   r.Relationship,
		Email:          r.Email,
		Cellphone:      r.Cellphone,
		Address:        r.Address,
	}
}

func optionalDate(s *string) *Date {
	if s == nil || *s == "" {
		return nil
	}
	d := Date(*s)
	return &d
}

// UpdatePasswordRequest carries a new password. The body may be a JSON object
// {"password": "..."} or the raw password text.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// ParseUpdatePasswordRequest accepts both body shapes. A JSON string literal
// is unquoted; any other body that is not an object is taken verbatim.
func ParseUpdatePasswordRequest(body []byte) *UpdatePasswordRequest {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var req UpdatePasswordRequest
		if err := json.Unmarshal([]byte(trimmed), &req); err == nil {
			return &req
		}
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return &UpdatePasswordRequest{Password: s}
		}
	}
	return &UpdatePasswordRequest{Password: trimmed}
}

func (r *UpdatePasswordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if !govalidator.StringLength(r.Password, "0", "128") {
		return dErrors.New(dErrors.CodeValidation, "password must be 128 characters or less")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	if len(r.Password) < MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	return nil
}
