package store_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

type attorneyStore interface {
	Save(ctx context.Context, a *models.Attorney) error
	FindByID(ctx context.Context, id string) (*models.Attorney, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error)
	FindByEmail(ctx context.Context, email string) (*models.Attorney, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Attorney, error)
	Ping(ctx context.Context) error
}

// contractSuite holds the behavior every attorney store must share. Backend
// suites embed it and assign store in SetupTest after resetting their state.
type contractSuite struct {
	suite.Suite
	store attorneyStore
}

// base is truncated to whole seconds so Mongo's millisecond precision and
// Postgres' microsecond precision round-trip exactly.
var base = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newAttorney(uid, doc, email string, created time.Time) *models.Attorney {
	baptism := models.Date("2001-05-20")
	return models.NewAttorney(models.Profile{
		DocumentType:   "DNI",
		DocumentNumber: doc,
		Names:          "Ana",
		Surnames:       "Quispe",
		Sex:            "F",
		BirthDate:      "1980-03-14",
		Baptism:        &baptism,
		Relationship:   "MADRE",
		Email:          email,
		Cellphone:      "987654321",
		Address:        "Av. Lima 123",
	}, uid, created)
}

func (s *contractSuite) assertSame(want, got *models.Attorney) {
	s.Require().NotNil(got)
	s.True(want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
	s.True(want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", want.UpdatedAt, got.UpdatedAt)
	w, g := want.Clone(), got.Clone()
	w.CreatedAt, w.UpdatedAt = time.Time{}, time.Time{}
	g.CreatedAt, g.UpdatedAt = time.Time{}, time.Time{}
	s.Equal(w, g)
}

func (s *contractSuite) TestSaveAndFind() {
	ctx := context.Background()

	s.Run("assigns an id on first save", func() {
		a := newAttorney("uid-assign", "11111111", "assign@x.com", base)
		s.Require().NoError(s.store.Save(ctx, a))
		s.NotEmpty(a.ID)

		found, err := s.store.FindByID(ctx, a.ID)
		s.Require().NoError(err)
		s.assertSame(a, found)
	})

	s.Run("keeps the password mirror", func() {
		a := newAttorney("uid-pw", "22222222", "pw@x.com", base)
		a.Password = "12345678"
		s.Require().NoError(s.store.Save(ctx, a))

		found, err := s.store.FindByID(ctx, a.ID)
		s.Require().NoError(err)
		s.Equal("12345678", found.Password)
	})

	s.Run("keeps absent sacrament dates absent", func() {
		a := newAttorney("uid-dates", "33333333", "dates@x.com", base)
		s.Require().NoError(s.store.Save(ctx, a))

		found, err := s.store.FindByID(ctx, a.ID)
		s.Require().NoError(err)
		s.Nil(found.FirstCommunion)
		s.Nil(found.Marriage)
		s.Require().NotNil(found.Baptism)
		s.Equal(models.Date("2001-05-20"), *found.Baptism)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.FindByID(ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestSaveReplaces() {
	ctx := context.Background()
	a := newAttorney("uid-replace", "44444444", "old@x.com", base)
	s.Require().NoError(s.store.Save(ctx, a))

	a.Email = "new@x.com"
	a.ApplyDeactivation(base.Add(time.Minute))
	s.Require().NoError(s.store.Save(ctx, a))

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.assertSame(a, found)

	_, err = s.store.FindByEmail(ctx, "old@x.com")
	s.ErrorIs(err, sentinel.ErrNotFound, "stale secondary index entries must be dropped")

	active, err := s.store.ListByStatus(ctx, models.StatusActive)
	s.Require().NoError(err)
	s.Empty(active)
}

func (s *contractSuite) TestUIDIsUnique() {
	ctx := context.Background()
	first := newAttorney("uid-dup", "55555555", "first@x.com", base)
	s.Require().NoError(s.store.Save(ctx, first))

	second := newAttorney("uid-dup", "66666666", "second@x.com", base)
	s.ErrorIs(s.store.Save(ctx, second), sentinel.ErrConflict)
}

func (s *contractSuite) TestLookupsReturnOldest() {
	ctx := context.Background()
	newer := newAttorney("uid-newer", "77777777", "shared@x.com", base.Add(time.Hour))
	older := newAttorney("uid-older", "77777777", "shared@x.com", base)
	s.Require().NoError(s.store.Save(ctx, newer))
	s.Require().NoError(s.store.Save(ctx, older))

	byDoc, err := s.store.FindByDocumentNumber(ctx, "77777777")
	s.Require().NoError(err)
	s.Equal(older.ID, byDoc.ID)

	byEmail, err := s.store.FindByEmail(ctx, "shared@x.com")
	s.Require().NoError(err)
	s.Equal(older.ID, byEmail.ID)

	_, err = s.store.FindByDocumentNumber(ctx, "00000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestListByStatus() {
	ctx := context.Background()
	s.Run("empty store yields an empty list", func() {
		list, err := s.store.ListByStatus(ctx, models.StatusInactive)
		s.Require().NoError(err)
		s.NotNil(list)
		s.Empty(list)
	})

	third := newAttorney("uid-3", "80000003", "c@x.com", base.Add(2*time.Hour))
	first := newAttorney("uid-1", "80000001", "a@x.com", base)
	second := newAttorney("uid-2", "80000002", "b@x.com", base.Add(time.Hour))
	gone := newAttorney("uid-4", "80000004", "d@x.com", base)
	gone.ApplyDeactivation(base)
	for _, a := range []*models.Attorney{third, first, second, gone} {
		s.Require().NoError(s.store.Save(ctx, a))
	}

	active, err := s.store.ListByStatus(ctx, models.StatusActive)
	s.Require().NoError(err)
	s.Require().Len(active, 3)
	s.Equal([]string{first.ID, second.ID, third.ID}, []string{active[0].ID, active[1].ID, active[2].ID})

	inactive, err := s.store.ListByStatus(ctx, models.StatusInactive)
	s.Require().NoError(err)
	s.Require().Len(inactive, 1)
	s.Equal(gone.ID, inactive[0].ID)
}

func (s *contractSuite) TestReturnedRecordsAreDetached() {
	ctx := context.Background()
	a := newAttorney("uid-detached", "90000000", "detached@x.com", base)
	s.Require().NoError(s.store.Save(ctx, a))

	found, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	found.Names = "mutated"

	again, err := s.store.FindByID(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Ana", again.Names)
}

func (s *contractSuite) TestPing() {
	s.NoError(s.store.Ping(context.Background()))
}
