package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/pkg/utils"
)

// MemoryStore is an in-process credential store with the same semantics as
// UserService. It backs tests and local tooling.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*database.User
	byEmail map[string]string

	// Err, when set, is returned by every call to simulate an unavailable
	// database.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*database.User),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryStore) Create(_ context.Context, u *database.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = auth.RoleOrdinary
	}
	if u.Skills == nil {
		u.Skills = pq.StringArray{}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now

	m.put(u)
	return nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(u), nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *MemoryStore) UpsertFederated(_ context.Context, email, name string) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now()
	if id, ok := m.byEmail[email]; ok {
		u := m.byID[id]
		u.Name = name
		if u.Role != auth.RoleAdmin {
			u.Role = auth.RoleInternal
		}
		u.UpdatedAt = now
		return clone(u), nil
	}

	u := &database.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      auth.RoleInternal,
		Skills:    pq.StringArray{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.put(u)
	return clone(u), nil
}

func (m *MemoryStore) UpdateProfile(_ context.Context, id string, profile Profile) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if profile.Bio != nil {
		u.Bio = utils.StringOrNil(*profile.Bio)
	}
	if profile.Skills != nil {
		u.Skills = pq.StringArray(append([]string{}, profile.Skills...))
	}
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (m *MemoryStore) SetRole(_ context.Context, email string, role auth.Role) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.byID[id]
	u.Role = role
	return clone(u), nil
}

// Len returns the number of stored users.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *MemoryStore) put(u *database.User) {
	stored := clone(u)
	m.byID[stored.ID] = stored
	m.byEmail[stored.Email] = stored.ID
}

func clone(u *database.User) *database.User {
	c := *u
	if u.PasswordHash != nil {
		h := *u.PasswordHash
		c.PasswordHash = &h
	}
	if u.Bio != nil {
		b := *u.Bio
		c.Bio = &b
	}
	c.Skills = append(pq.StringArray{}, u.Skills...)
	return &c
}
