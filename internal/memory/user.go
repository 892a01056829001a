package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/tmercier/boutique/internal/domain/user"
)

// UserStore holds accounts with a case-insensitive email index.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*user.User
	byEmail map[string]string // lowercase email -> id
	index   []string
}

var _ user.Store = (*UserStore)(nil)

// NewUserStore creates an empty account store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

// Create registers a new account; the email must be unused.
func (s *UserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return user.ErrEmailTaken
	}
	cp := cloneUser(u)
	s.byID[u.ID] = cp
	s.byEmail[email] = u.ID
	s.index = append(s.index, u.ID)
	return nil
}

// Get returns the account with the given id.
func (s *UserStore) Get(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(u), nil
}

// GetByEmail resolves an account by email, case-insensitively.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return cloneUser(s.byID[id]), nil
}

// UpdateProfile applies a partial profile edit.
func (s *UserStore) UpdateProfile(_ context.Context, id string, upd user.ProfileUpdate) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	return cloneUser(u), nil
}

// Count returns the number of accounts.
func (s *UserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *UserStore) dumpLocked() []user.User {
	out := make([]user.User, 0, len(s.index))
	for _, id := range s.index {
		out = append(out, *cloneUser(s.byID[id]))
	}
	return out
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	cp.PasswordHash = make([]byte, len(u.PasswordHash))
	copy(cp.PasswordHash, u.PasswordHash)
	return &cp
}
