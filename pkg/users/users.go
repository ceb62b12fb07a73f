// Package users manages accounts: creation with bcrypt-hashed passwords,
// authentication, lookup and deletion.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"webeng-hq/hello/pkg/storage"

	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("username and password are required")
)

// User is the public view of an account. The password hash never leaves
// the package.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user has the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost sets the bcrypt cost used for new passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service implements the account operations on a storage.Store.
type Service struct {
	store  storage.Store
	cost   int
	logger *slog.Logger

	// dummyHash is compared against when the user does not exist so that
	// unknown and known usernames take the same time to reject.
	dummyHash []byte
}

// NewService creates a Service.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cost:   bcrypt.DefaultCost,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "users")
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("hello-dummy-password"), s.cost)
	return s
}

// Create registers a user. It fails with ErrUserExists when the username is
// taken.
func (s *Service) Create(ctx context.Context, username, password string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := &storage.User{Username: username, PasswordHash: string(hash), Role: string(role)}
	if err := s.store.CreateUser(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created", "username", username, "role", role)
	return toUser(rec), nil
}

// Authenticate reports whether password matches the stored hash of
// username. An unknown username yields false without an error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	rec, err := s.store.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.DebugContext(ctx, "password mismatch", "username", username)
			return false, nil
		}
		return false, fmt.Errorf("authenticate: %w", err)
	}
	return true, nil
}

// Get returns the user, or ErrUserNotFound.
func (s *Service) Get(ctx context.Context, username string) (*User, error) {
	rec, err := s.store.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return toUser(rec), nil
}

// List returns every user in creation order.
func (s *Service) List(ctx context.Context) ([]User, error) {
	recs, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, *toUser(rec))
	}
	return out, nil
}

// Delete removes the user, or returns ErrUserNotFound.
func (s *Service) Delete(ctx context.Context, username string) error {
	err := s.store.DeleteUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "username", username)
	return nil
}

func toUser(rec *storage.User) *User {
	return &User{ID: rec.ID, Username: rec.Username, Role: Role(rec.Role)}
}
