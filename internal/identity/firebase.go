package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/api/option"
)

// roleClaim is the custom claim key the auth microservice reads.
const roleClaim = "role"

// Firebase provisions attorney accounts in Firebase Authentication.
type Firebase struct {
	client *auth.Client
}

// NewFirebase initializes the Admin SDK. An empty credentialsFile falls back
// to Application Default Credentials.
func NewFirebase(ctx context.Context, projectID, credentialsFile string) (*Firebase, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &Firebase{client: client}, nil
}

func (f *Firebase) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		Disabled(false)
	// Firebase rejects an empty display name on create.
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	u, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", classify("create_user", err)
	}
	return u.UID, nil
}

func (f *Firebase) SetRoleClaim(ctx context.Context, uid, role string) error {
	if err := f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{roleClaim: role}); err != nil {
		return classify("set_claims", err)
	}
	return nil
}

func (f *Firebase) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	return f.update(ctx, "update_display_name", uid, (&auth.UserToUpdate{}).DisplayName(displayName))
}

func (f *Firebase) UpdatePassword(ctx context.Context, uid, password string) error {
	return f.update(ctx, "update_password", uid, (&auth.UserToUpdate{}).Password(password))
}

func (f *Firebase) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return f.update(ctx, "set_disabled", uid, (&auth.UserToUpdate{}).Disabled(disabled))
}

func (f *Firebase) update(ctx context.Context, op, uid string, params *auth.UserToUpdate) error {
	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		return classify(op, err)
	}
	return nil
}

func classify(op string, err error) error {
	kind := KindUnavailable
	switch {
	case auth.IsEmailAlreadyExists(err):
		kind = KindEmailExists
	case auth.IsUserNotFound(err):
		kind = KindUserNotFound
	case errorutils.IsInvalidArgument(err):
		kind = KindInvalidArgument
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
