package auth

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tmercier/boutique/internal/domain/user"
)

// ErrInvalidCredentials is returned on login with a wrong email or password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError reports malformed registration input, rejected before any
// state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Service handles registration, login and profile access.
type Service struct {
	users    user.Store
	sessions *SessionManager
}

// NewService creates the auth service.
func NewService(users user.Store, sessions *SessionManager) *Service {
	return &Service{users: users, sessions: sessions}
}

// RegisterInput is the data required to open an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Address   string
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, string, error) {
	if err := validateRegister(in); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Address:      in.Address,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Create(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout revokes the session token.
func (s *Service) Logout(token string) {
	s.sessions.Destroy(token)
}

// Identify resolves a bearer token into the owning account.
func (s *Service) Identify(ctx context.Context, token string) (*user.User, error) {
	userID, err := s.sessions.Resolve(token)
	if err != nil {
		return nil, err
	}
	return s.users.Get(ctx, userID)
}

// Profile returns the account for the given user id.
func (s *Service) Profile(ctx context.Context, userID string) (*user.User, error) {
	return s.users.Get(ctx, userID)
}

// UpdateProfile applies a partial profile edit.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd user.ProfileUpdate) (*user.User, error) {
	return s.users.UpdateProfile(ctx, userID, upd)
}

func validateRegister(in RegisterInput) error {
	if in.Email == "" {
		return &ValidationError{Field: "email", Reason: "required"}
	}
	if len(in.Password) < 6 {
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}
	if in.FirstName == "" {
		return &ValidationError{Field: "first_name", Reason: "required"}
	}
	if in.LastName == "" {
		return &ValidationError{Field: "last_name", Reason: "required"}
	}
	if len(in.Address) < 5 {
		return &ValidationError{Field: "address", Reason: "must be at least 5 characters"}
	}
	return nil
}
