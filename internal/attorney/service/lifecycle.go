package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/audit"
	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

// Create provisions the identity account and then persists the record.
// Caller-supplied id, uid, role, status and password are ignored; the document
// number becomes the initial password.
func (s *Service) Create(ctx context.Context, req *models.AttorneyRequest) (a *models.Attorney, err error) {
	ctx, span, start := s.startSpan(ctx, "create")
	defer func() { s.endSpan(span, "create", start, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	profile := req.Profile()

	mirror, err := s.passwords.Encode(profile.DocumentNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode password")
	}

	displayName := models.DisplayName(profile.Names, profile.Surnames)
	uid, err := s.identity.CreateUser(ctx, profile.Email, profile.DocumentNumber, displayName)
	if err != nil {
		s.logger.WarnContext(ctx, "identity account creation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, identityError(err)
	}
	if err := s.identity.SetRoleClaim(ctx, uid, models.RoleAttorney); err != nil {
		s.logger.ErrorContext(ctx, "failed to set role claim; identity account left without record",
			"error", err,
			"uid", uid,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncrementOrphanedAccount()
		return nil, identityError(err)
	}

	a = models.NewAttorney(profile, uid, requestcontext.Now(ctx))
	a.Password = mirror
	if err := s.attorneys.Save(ctx, a); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist attorney; identity account orphaned",
			"error", err,
			"uid", uid,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.metrics.IncrementOrphanedAccount()
		return nil, storeError(err, "failed to save attorney")
	}
	span.SetAttributes(attribute.String("attorney.id", a.ID))

	s.logger.InfoContext(ctx, "attorney created",
		"attorney_id", a.ID,
		"uid", a.UID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.EventAttorneyCreated, a)
	return a, nil
}

// Update overwrites the profile fields and refreshes the provider display
// name. Identity, role and status are never touched.
func (s *Service) Update(ctx context.Context, id string, req *models.AttorneyRequest) (a *models.Attorney, err error) {
	ctx, span, start := s.startSpan(ctx, "update", attribute.String("attorney.id", id))
	defer func() { s.endSpan(span, "update", start, err) }()

	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err = s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := req.Profile()

	if err := s.identity.UpdateDisplayName(ctx, a.UID, models.DisplayName(profile.Names, profile.Surnames)); err != nil {
		s.logger.WarnContext(ctx, "identity display name update failed",
			"error", err,
			"attorney_id", a.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, identityError(err)
	}

	a.ApplyProfile(profile, requestcontext.Now(ctx))
	if err := s.attorneys.Save(ctx, a); err != nil {
		return nil, storeError(err, "failed to save attorney")
	}
	s.emit(ctx, audit.EventAttorneyUpdated, a)
	return a, nil
}

// UpdatePassword changes the provider password, then mirrors it on the record.
func (s *Service) UpdatePassword(ctx context.Context, id string, req *models.UpdatePasswordRequest) (a *models.Attorney, err error) {
	ctx, span, start := s.startSpan(ctx, "update_password", attribute.String("attorney.id", id))
	defer func() { s.endSpan(span, "update_password", start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	a, err = s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mirror, err := s.passwords.Encode(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode password")
	}

	if err := s.identity.UpdatePassword(ctx, a.UID, req.Password); err != nil {
		s.logger.WarnContext(ctx, "identity password update failed",
			"error", err,
			"attorney_id", a.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, identityError(err)
	}

	a.ApplyPassword(mirror, requestcontext.Now(ctx))
	if err := s.attorneys.Save(ctx, a); err != nil {
		s.logger.ErrorContext(ctx, "password changed at identity provider but record not saved",
			"error", err,
			"attorney_id", a.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, storeError(err, "failed to save attorney")
	}
	s.emit(ctx, audit.EventAttorneyPasswordUpdated, a)
	return a, nil
}

// Delete soft-deletes: disables the provider account, then marks the record
// inactive. A missing record fails before any provider call.
func (s *Service) Delete(ctx context.Context, id string) (a *models.Attorney, err error) {
	ctx, span, start := s.startSpan(ctx, "delete", attribute.String("attorney.id", id))
	defer func() { s.endSpan(span, "delete", start, err) }()

	a, err = s.setEnabled(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.EventAttorneyDeactivated, a)
	return a, nil
}

// Reactivate re-enables the provider account, then marks the record active.
func (s *Service) Reactivate(ctx context.Context, id string) (a *models.Attorney, err error) {
	ctx, span, start := s.startSpan(ctx, "reactivate", attribute.String("attorney.id", id))
	defer func() { s.endSpan(span, "reactivate", start, err) }()

	a, err = s.setEnabled(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.EventAttorneyReactivated, a)
	return a, nil
}

func (s *Service) setEnabled(ctx context.Context, id string, enabled bool) (*models.Attorney, error) {
	a, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.identity.SetDisabled(ctx, a.UID, !enabled); err != nil {
		s.logger.WarnContext(ctx, "identity account status change failed",
			"error", err,
			"attorney_id", a.ID,
			"enabled", enabled,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, identityError(err)
	}

	now := requestcontext.Now(ctx)
	if enabled {
		a.ApplyReactivation(now)
	} else {
		a.ApplyDeactivation(now)
	}
	if err := s.attorneys.Save(ctx, a); err != nil {
		return nil, storeError(err, "failed to save attorney")
	}
	return a, nil
}
