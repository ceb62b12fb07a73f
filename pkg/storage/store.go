package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"webeng-hq/hello/pkg/config"
)

var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a username is already taken.
	ErrDuplicate = errors.New("already exists")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// Error is returned by every backend operation that fails.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(backend, op string, err error) *Error {
	return &Error{Backend: backend, Op: op, Err: err}
}

// User is a stored account. Role is "ADMIN" or "USER".
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Greeting is one entry of the greeting history. UserID is set when the
// greeted name belonged to a registered user at greeting time; Username is
// filled from that user on reads and is empty otherwise.
type Greeting struct {
	ID        int64
	Name      string
	Message   string
	CreatedAt time.Time
	UserID    *int64
	Username  string
}

// UserCount is a username with its number of greetings.
type UserCount struct {
	Username string
	Count    int64
}

// Store persists users and greetings. Implementations are safe for
// concurrent use. Lists are returned in insertion order.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, username string) error
	CountUsers(ctx context.Context) (int64, error)

	InsertGreeting(ctx context.Context, g *Greeting) error
	ListGreetings(ctx context.Context) ([]*Greeting, error)
	ListGreetingsByUser(ctx context.Context, userID int64) ([]*Greeting, error)
	CountGreetings(ctx context.Context) (int64, error)
	// TopGreeted returns at most limit users ordered by greeting count,
	// highest first, ties broken by username.
	TopGreeted(ctx context.Context, limit int) ([]UserCount, error)
	// DeleteGreetingsBefore removes greetings created before t and returns
	// how many were removed.
	DeleteGreetingsBefore(ctx context.Context, t time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open creates the backend selected by cfg.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := NewSQLiteStore(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
