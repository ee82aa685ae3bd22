package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemorySuite struct {
	suite.Suite
	idp *InMemory
	ctx context.Context
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.idp = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) TestCreateUser() {
	uid, err := s.idp.CreateUser(s.ctx, "a@x.com", "12345678", "Ana Quispe")
	s.Require().NoError(err)
	s.NotEmpty(uid)

	u, ok := s.idp.User(uid)
	s.Require().True(ok)
	s.Equal("a@x.com", u.Email)
	s.Equal("Ana Quispe", u.DisplayName)
	s.False(u.Disabled)

	s.Run("email uniqueness ignores case", func() {
		_, err := s.idp.CreateUser(s.ctx, "A@X.COM", "12345678", "Other")
		s.Equal(KindEmailExists, KindOf(err))
	})

	s.Run("short password is rejected", func() {
		_, err := s.idp.CreateUser(s.ctx, "b@x.com", "123", "Other")
		s.Equal(KindInvalidArgument, KindOf(err))
	})
}

func (s *InMemorySuite) TestMutations() {
	uid, err := s.idp.CreateUser(s.ctx, "a@x.com", "12345678", "Ana")
	s.Require().NoError(err)

	s.Require().NoError(s.idp.SetRoleClaim(s.ctx, uid, "APODERADO"))
	s.Require().NoError(s.idp.UpdateDisplayName(s.ctx, uid, "Ana Rojas"))
	s.Require().NoError(s.idp.UpdatePassword(s.ctx, uid, "n3wpass"))
	s.Require().NoError(s.idp.SetDisabled(s.ctx, uid, true))

	u, _ := s.idp.User(uid)
	s.Equal("APODERADO", u.Claims[roleClaim])
	s.Equal("Ana Rojas", u.DisplayName)
	s.Equal("n3wpass", u.Password)
	s.True(u.Disabled)

	s.Run("snapshot is detached", func() {
		u.Claims[roleClaim] = "ADMIN"
		again, _ := s.idp.User(uid)
		s.Equal("APODERADO", again.Claims[roleClaim])
	})

	s.Run("unknown uid is user_not_found", func() {
		err := s.idp.SetDisabled(s.ctx, "missing", true)
		s.Equal(KindUserNotFound, KindOf(err))
		s.Contains(err.Error(), "set_disabled")
	})
}

func (s *InMemorySuite) TestKindOfForeignError() {
	s.Equal(Kind(""), KindOf(context.Canceled))
}

func (s *InMemorySuite) TestClassifyUnknownProviderError() {
	err := classify("create_user", context.DeadlineExceeded)
	s.Equal(KindUnavailable, KindOf(err))
	s.ErrorIs(err, context.DeadlineExceeded)
}
