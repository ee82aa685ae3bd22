package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// User is a snapshot of an account held by the in-memory provider.
type User struct {
	UID         string
	Email       string
	Password    string
	DisplayName string
	Disabled    bool
	Claims      map[string]string
}

// InMemory is a process-local provider for tests and local runs. Emails are
// unique case-insensitively, mirroring the hosted provider.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]*User)}
}

func (m *InMemory) CreateUser(_ context.Context, email, password, displayName string) (string, error) {
	if email == "" || len(password) < 6 {
		return "", &Error{Kind: KindInvalidArgument, Op: "create_user", Err: errors.New("email and a 6+ character password are required")}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return "", &Error{Kind: KindEmailExists, Op: "create_user"}
		}
	}
	uid := uuid.NewString()
	m.users[uid] = &User{
		UID:         uid,
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		Claims:      map[string]string{},
	}
	return uid, nil
}

func (m *InMemory) SetRoleClaim(_ context.Context, uid, role string) error {
	return m.mutate("set_claims", uid, func(u *User) { u.Claims[roleClaim] = role })
}

func (m *InMemory) UpdateDisplayName(_ context.Context, uid, displayName string) error {
	return m.mutate("update_display_name", uid, func(u *User) { u.DisplayName = displayName })
}

func (m *InMemory) UpdatePassword(_ context.Context, uid, password string) error {
	if len(password) < 6 {
		return &Error{Kind: KindInvalidArgument, Op: "update_password", Err: errors.New("password must be at least 6 characters")}
	}
	return m.mutate("update_password", uid, func(u *User) { u.Password = password })
}

func (m *InMemory) SetDisabled(_ context.Context, uid string, disabled bool) error {
	return m.mutate("set_disabled", uid, func(u *User) { u.Disabled = disabled })
}

// User returns a copy of the account, if present.
func (m *InMemory) User(uid string) (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[uid]
	if !ok {
		return User{}, false
	}
	cp := *u
	cp.Claims = make(map[string]string, len(u.Claims))
	for k, v := range u.Claims {
		cp.Claims[k] = v
	}
	return cp, true
}

func (m *InMemory) mutate(op, uid string, fn func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return &Error{Kind: KindUserNotFound, Op: op}
	}
	fn(u)
	return nil
}
