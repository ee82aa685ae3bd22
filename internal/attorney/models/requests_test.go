package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
)

func ptr(s string) *string { return &s }

func validRequest() *AttorneyRequest {
	return &AttorneyRequest{
		DocumentType:   "DNI",
		DocumentNumber: "12345678",
		Names:          "Ana",
		Surnames:       "Quispe",
		BirthDate:      "1980-03-14",
		Email:          "a@x.com",
		Cellphone:      "987654321",
	}
}

func TestAttorneyRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *AttorneyRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*AttorneyRequest) {}},
		{name: "missing email", mutate: func(r *AttorneyRequest) { r.Email = "" }, wantErr: "email is required"},
		{name: "bad email", mutate: func(r *AttorneyRequest) { r.Email = "not-an-email" }, wantErr: "email is invalid"},
		{name: "missing document", mutate: func(r *AttorneyRequest) { r.DocumentNumber = "" }, wantErr: "documentNumber is required"},
		{name: "short document", mutate: func(r *AttorneyRequest) { r.DocumentNumber = "123" }, wantErr: "at least 6"},
		{name: "long document", mutate: func(r *AttorneyRequest) { r.DocumentNumber = strings.Repeat("9", 21) }, wantErr: "20 characters"},
		{name: "names optional", mutate: func(r *AttorneyRequest) { r.Names = ""; r.Surnames = "" }},
		{name: "bad birth date", mutate: func(r *AttorneyRequest) { r.BirthDate = "14/03/1980" }, wantErr: "YYYY-MM-DD"},
		{name: "bad sacrament date", mutate: func(r *AttorneyRequest) { r.Marriage = ptr("2020-13-01") }, wantErr: "YYYY-MM-DD"},
		{name: "empty birth date allowed", mutate: func(r *AttorneyRequest) { r.BirthDate = "" }},
		{name: "cellphone free text", mutate: func(r *AttorneyRequest) { r.Cellphone = "987-654 321" }},
		{name: "only email and document", mutate: func(r *AttorneyRequest) {
			*r = AttorneyRequest{Email: "a@x.com", DocumentNumber: "12345678"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			req.Normalize()
			err := req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil request", func(t *testing.T) {
		var req *AttorneyRequest
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeBadRequest))
	})
}

func TestAttorneyRequestNormalizeAndProfile(t *testing.T) {
	req := &AttorneyRequest{
		ID:             "forged",
		UID:            "forged",
		Role:           "ADMIN",
		Status:         "Inactivo",
		Password:       "hunter22",
		DocumentNumber: " 12345678 ",
		Names:          " Ana ",
		Email:          " A@X.COM ",
		Baptism:        ptr(" 2001-05-20 "),
		Confirmation:   ptr(""),
	}
	req.Normalize()
	p := req.Profile()

	assert.Equal(t, "12345678", p.DocumentNumber)
	assert.Equal(t, "Ana", p.Names)
	assert.Equal(t, "a@x.com", p.Email)
	require.NotNil(t, p.Baptism)
	assert.Equal(t, Date("2001-05-20"), *p.Baptism)
	assert.Nil(t, p.Confirmation)
	assert.Nil(t, p.Marriage)
}

func TestParseUpdatePasswordRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "json object", body: `{"password":"s3cret!"}`, want: "s3cret!"},
		{name: "json string", body: `"s3cret!"`, want: "s3cret!"},
		{name: "raw text", body: "s3cret!\n", want: "s3cret!"},
		{name: "malformed object kept verbatim", body: `{"password":`, want: `{"password":`},
		{name: "empty", body: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUpdatePasswordRequest([]byte(tt.body)).Password)
		})
	}
}

func TestUpdatePasswordRequestValidate(t *testing.T) {
	assert.NoError(t, (&UpdatePasswordRequest{Password: "123456"}).Validate())
	assert.ErrorContains(t, (&UpdatePasswordRequest{}).Validate(), "password is required")
	assert.ErrorContains(t, (&UpdatePasswordRequest{Password: "12345"}).Validate(), "at least 6")
	assert.ErrorContains(t, (&UpdatePasswordRequest{Password: strings.Repeat("x", 129)}).Validate(), "128")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-02-29"), d)

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}
