package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/secrets"
	"github.com/angeljunes/vg-ms-attorney/internal/identity"
	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/audit"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestCreate() {
	s.Run("provisions account then persists active record", func() {
		req := s.createRequest()
		req.ID = "forged-id"
		req.UID = "forged-uid"
		req.Role = "ADMIN"
		req.Status = string(models.StatusInactive)
		req.Password = "chosen-by-caller"

		gomock.InOrder(
			s.mockIdentity.EXPECT().CreateUser(gomock.Any(), "a@x.com", "12345678", "Ana Quispe").Return("uid-1", nil),
			s.mockIdentity.EXPECT().SetRoleClaim(gomock.Any(), "uid-1", models.RoleAttorney).Return(nil),
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *models.Attorney) error {
				s.Empty(a.ID)
				a.ID = "att-1"
				return nil
			}),
		)
		s.expectAudit(audit.EventAttorneyCreated)

		a, err := s.service.Create(s.ctx, req)
		s.Require().NoError(err)
		s.Equal("att-1", a.ID)
		s.Equal("uid-1", a.UID)
		s.Equal(models.RoleAttorney, a.Role)
		s.Equal(models.StatusActive, a.Status)
		s.Equal("12345678", a.Password)
		s.Equal(s.now, a.CreatedAt)
		s.Equal(s.now, a.UpdatedAt)
	})

	s.Run("email and document alone are enough", func() {
		gomock.InOrder(
			s.mockIdentity.EXPECT().CreateUser(gomock.Any(), "a@x.com", "12345678", "").Return("uid-1", nil),
			s.mockIdentity.EXPECT().SetRoleClaim(gomock.Any(), "uid-1", models.RoleAttorney).Return(nil),
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *models.Attorney) error {
				a.ID = "att-1"
				return nil
			}),
		)
		s.expectAudit(audit.EventAttorneyCreated)

		a, err := s.service.Create(s.ctx, &models.AttorneyRequest{Email: "a@x.com", DocumentNumber: "12345678"})
		s.Require().NoError(err)
		s.Equal(models.StatusActive, a.Status)
		s.Equal(models.RoleAttorney, a.Role)
		s.Equal("12345678", a.Password)
		s.Empty(a.Names)
	})

	s.Run("invalid input never reaches the provider", func() {
		req := s.createRequest()
		req.Email = "nope"

		_, err := s.service.Create(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("nil request is bad request", func() {
		_, err := s.service.Create(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("duplicate email surfaces as conflict without a record", func() {
		s.mockIdentity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", &identity.Error{Kind: identity.KindEmailExists, Op: "create_user"})

		_, err := s.service.Create(s.ctx, s.createRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("role claim failure leaves no record", func() {
		s.mockIdentity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("uid-1", nil)
		s.mockIdentity.EXPECT().SetRoleClaim(gomock.Any(), "uid-1", models.RoleAttorney).Return(errors.New("unavailable"))

		_, err := s.service.Create(s.ctx, s.createRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	})

	s.Run("persistence failure after provisioning is internal", func() {
		s.mockIdentity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("uid-1", nil)
		s.mockIdentity.EXPECT().SetRoleClaim(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("write failed"))

		_, err := s.service.Create(s.ctx, s.createRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestPasswordMirrorModes() {
	s.Run("bcrypt stores a hash of the document number", func() {
		svc := New(s.mockStore, s.mockIdentity, s.mockValidator,
			WithPasswordEncoder(secrets.NewEncoder(string(secrets.ModeBcrypt))))
		s.mockIdentity.EXPECT().CreateUser(gomock.Any(), gomock.Any(), "12345678", gomock.Any()).Return("uid-1", nil)
		s.mockIdentity.EXPECT().SetRoleClaim(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		a, err := svc.Create(s.ctx, s.createRequest())
		s.Require().NoError(err)
		s.NotEqual("12345678", a.Password)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(a.Password), []byte("12345678")))
	})

	s.Run("none stores nothing", func() {
		svc := New(s.mockStore, s.mockIdentity, s.mockValidator,
			WithPasswordEncoder(secrets.NewEncoder(string(secrets.ModeNone))))
		existing := s.existing(models.StatusActive)
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(existing, nil)
		s.mockIdentity.EXPECT().UpdatePassword(gomock.Any(), "uid-1", "newpass1").Return(nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		a, err := svc.UpdatePassword(s.ctx, "att-1", &models.UpdatePasswordRequest{Password: "newpass1"})
		s.Require().NoError(err)
		s.Empty(a.Password)
	})
}

func (s *ServiceSuite) TestUpdate() {
	s.Run("overwrites profile but never identity, role or status", func() {
		existing := s.existing(models.StatusInactive)
		req := s.createRequest()
		req.Names = "Rosa"
		req.ID = "other"
		req.UID = "uid-other"
		req.Role = "ADMIN"
		req.Status = string(models.StatusActive)

		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(existing, nil)
		s.mockIdentity.EXPECT().UpdateDisplayName(gomock.Any(), "uid-1", "Rosa Quispe").Return(nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *models.Attorney) error {
			s.Equal("att-1", a.ID)
			s.Equal("uid-1", a.UID)
			s.Equal(models.RoleAttorney, a.Role)
			s.Equal(models.StatusInactive, a.Status)
			s.Equal("12345678", a.Password)
			s.Equal("Rosa", a.Names)
			s.Equal(s.now, a.UpdatedAt)
			return nil
		})
		s.expectAudit(audit.EventAttorneyUpdated)

		_, err := s.service.Update(s.ctx, "att-1", req)
		s.Require().NoError(err)
	})

	s.Run("accepts a body without names", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil)
		s.mockIdentity.EXPECT().UpdateDisplayName(gomock.Any(), "uid-1", "").Return(nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.expectAudit(audit.EventAttorneyUpdated)

		a, err := s.service.Update(s.ctx, "att-1", &models.AttorneyRequest{Email: "a@x.com", DocumentNumber: "12345678"})
		s.Require().NoError(err)
		s.Empty(a.Names)
		s.Equal("a@x.com", a.Email)
	})

	s.Run("missing record fails before the provider", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Update(s.ctx, "missing", s.createRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("provider failure leaves the record unchanged", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil)
		s.mockIdentity.EXPECT().UpdateDisplayName(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("down"))

		_, err := s.service.Update(s.ctx, "att-1", s.createRequest())
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	})
}

func (s *ServiceSuite) TestUpdatePassword() {
	s.Run("changes provider password then mirrors it", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil)
		gomock.InOrder(
			s.mockIdentity.EXPECT().UpdatePassword(gomock.Any(), "uid-1", "s3cret!!").Return(nil),
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		)
		s.expectAudit(audit.EventAttorneyPasswordUpdated)

		a, err := s.service.UpdatePassword(s.ctx, "att-1", &models.UpdatePasswordRequest{Password: "s3cret!!"})
		s.Require().NoError(err)
		s.Equal("s3cret!!", a.Password)
	})

	s.Run("short password is rejected before any lookup", func() {
		_, err := s.service.UpdatePassword(s.ctx, "att-1", &models.UpdatePasswordRequest{Password: "123"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("provider rejection is not persisted", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil)
		s.mockIdentity.EXPECT().UpdatePassword(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&identity.Error{Kind: identity.KindInvalidArgument, Op: "update_password"})

		_, err := s.service.UpdatePassword(s.ctx, "att-1", &models.UpdatePasswordRequest{Password: "s3cret!!"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestDeleteAndReactivate() {
	s.Run("delete disables the account then marks inactive", func() {
		gomock.InOrder(
			s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil),
			s.mockIdentity.EXPECT().SetDisabled(gomock.Any(), "uid-1", true).Return(nil),
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		)
		s.expectAudit(audit.EventAttorneyDeactivated)

		a, err := s.service.Delete(s.ctx, "att-1")
		s.Require().NoError(err)
		s.Equal(models.StatusInactive, a.Status)
		s.Equal(s.now, a.UpdatedAt)
	})

	s.Run("delete of unknown id makes no provider call", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Delete(s.ctx, "missing")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("provider failure leaves status unchanged", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil)
		s.mockIdentity.EXPECT().SetDisabled(gomock.Any(), "uid-1", true).
			Return(&identity.Error{Kind: identity.KindUnavailable, Op: "set_disabled"})

		_, err := s.service.Delete(s.ctx, "att-1")
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	})

	s.Run("reactivate enables the account then marks active", func() {
		gomock.InOrder(
			s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusInactive), nil),
			s.mockIdentity.EXPECT().SetDisabled(gomock.Any(), "uid-1", false).Return(nil),
			s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		)
		s.expectAudit(audit.EventAttorneyReactivated)

		a, err := s.service.Reactivate(s.ctx, "att-1")
		s.Require().NoError(err)
		s.Equal(models.StatusActive, a.Status)
	})

	s.Run("reactivating an active record is idempotent", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "att-1").Return(s.existing(models.StatusActive), nil)
		s.mockIdentity.EXPECT().SetDisabled(gomock.Any(), "uid-1", false).Return(nil)
		s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.expectAudit(audit.EventAttorneyReactivated)

		a, err := s.service.Reactivate(s.ctx, "att-1")
		s.Require().NoError(err)
		s.Equal(models.StatusActive, a.Status)
	})
}
