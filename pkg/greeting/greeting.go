// Package greeting builds time-of-day greetings and keeps their history.
package greeting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"webeng-hq/hello/pkg/storage"
	"webeng-hq/hello/pkg/users"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("webeng-hq/hello/greeting")

// DefaultName is greeted when no name is given.
const DefaultName = "World"

// Salutation returns the salutation for an hour of the day:
// 07..15 "Good Morning", 16..20 "Good Afternoon", otherwise "Good Evening".
func Salutation(hour int) string {
	switch {
	case hour >= 7 && hour <= 15:
		return "Good Morning"
	case hour >= 16 && hour <= 20:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

// Entry is one greeting of the history. Username is nil when the greeted
// name was not a registered user.
type Entry struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Username  *string   `json:"username"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultName sets the name greeted when none is given.
func WithDefaultName(name string) Option {
	return func(s *Service) { s.defaultName = name }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service greets and records greetings.
type Service struct {
	store       storage.Store
	loc         *time.Location
	now         func() time.Time
	defaultName string
	logger      *slog.Logger
}

// NewService creates a Service whose salutation follows the wall clock in
// loc. A nil loc means UTC.
func NewService(store storage.Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		store:       store,
		loc:         loc,
		now:         time.Now,
		defaultName: DefaultName,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "greeting")
	return s
}

// Greet returns "<salutation>, <name>!" and records it in the history,
// linked to the user called name if one exists.
func (s *Service) Greet(ctx context.Context, name string) (string, time.Time, error) {
	ctx, span := tracer.Start(ctx, "greeting.greet")
	defer span.End()

	if name == "" {
		name = s.defaultName
	}
	now := s.now()
	message := fmt.Sprintf("%s, %s!", Salutation(now.In(s.loc).Hour()), name)

	g := &storage.Greeting{Name: name, Message: message, CreatedAt: now}
	u, err := s.store.GetUser(ctx, name)
	switch {
	case err == nil:
		g.UserID = &u.ID
	case !errors.Is(err, storage.ErrNotFound):
		return "", time.Time{}, fmt.Errorf("look up greeted user: %w", err)
	}
	span.SetAttributes(attribute.Bool("hello.greeting.registered_user", g.UserID != nil))

	if err := s.store.InsertGreeting(ctx, g); err != nil {
		return "", time.Time{}, fmt.Errorf("record greeting: %w", err)
	}

	s.logger.DebugContext(ctx, "greeted", "name", name, "message", message)
	return message, now, nil
}

// History returns the greetings of a registered user, or
// users.ErrUserNotFound.
func (s *Service) History(ctx context.Context, username string) ([]Entry, error) {
	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	gs, err := s.store.ListGreetingsByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return toEntries(gs), nil
}

// AllHistory returns every recorded greeting.
func (s *Service) AllHistory(ctx context.Context) ([]Entry, error) {
	gs, err := s.store.ListGreetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return toEntries(gs), nil
}

func toEntries(gs []*storage.Greeting) []Entry {
	out := make([]Entry, 0, len(gs))
	for _, g := range gs {
		e := Entry{ID: g.ID, Message: g.Message, Timestamp: g.CreatedAt}
		if g.Username != "" {
			name := g.Username
			e.Username = &name
		}
		out = append(out, e)
	}
	return out
}
