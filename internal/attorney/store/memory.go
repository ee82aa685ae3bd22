package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

// InMemory is a process-local attorney store for tests and local runs.
type InMemory struct {
	mu        sync.RWMutex
	attorneys map[string]*models.Attorney
}

func NewInMemory() *InMemory {
	return &InMemory{attorneys: make(map[string]*models.Attorney)}
}

// Save inserts or replaces the record, assigning an ID when empty. A UID
// already owned by another record is rejected with ErrConflict.
func (s *InMemory) Save(_ context.Context, a *models.Attorney) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	for id, existing := range s.attorneys {
		if id != a.ID && a.UID != "" && existing.UID == a.UID {
			return sentinel.ErrConflict
		}
	}
	s.attorneys[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.attorneys[id]; ok {
		return a.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByDocumentNumber(_ context.Context, documentNumber string) (*models.Attorney, error) {
	return s.findFirst(func(a *models.Attorney) bool { return a.DocumentNumber == documentNumber })
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Attorney, error) {
	return s.findFirst(func(a *models.Attorney) bool { return a.Email == email })
}

// ListByStatus returns every record with the given status, oldest first.
func (s *InMemory) ListByStatus(_ context.Context, status models.Status) ([]*models.Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Attorney, 0)
	for _, a := range s.attorneys {
		if a.Status == status {
			out = append(out, a.Clone())
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *InMemory) Ping(context.Context) error {
	return nil
}

// findFirst returns the oldest record matching pred, so duplicate document
// numbers or emails resolve deterministically.
func (s *InMemory) findFirst(pred func(*models.Attorney) bool) (*models.Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Attorney
	for _, a := range s.attorneys {
		if !pred(a) {
			continue
		}
		if found == nil || a.CreatedAt.Before(found.CreatedAt) {
			found = a
		}
	}
	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	return found.Clone(), nil
}

func sortByCreated(list []*models.Attorney) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
