package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

const memoryBackend = "memory"

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*User
	greetings []*Greeting
	nextUser  int64
	nextGreet int64
	closed    bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

func (s *MemoryStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newError(memoryBackend, "create_user", ErrClosed)
	}
	if _, ok := s.users[u.Username]; ok {
		return newError(memoryBackend, "create_user", ErrDuplicate)
	}

	s.nextUser++
	u.ID = s.nextUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	stored := *u
	s.users[u.Username] = &stored
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, newError(memoryBackend, "get_user", ErrClosed)
	}
	u, ok := s.users[username]
	if !ok {
		return nil, newError(memoryBackend, "get_user", ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, newError(memoryBackend, "list_users", ErrClosed)
	}
	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out := *u
		users = append(users, &out)
	}
	slices.SortFunc(users, func(a, b *User) int { return cmp.Compare(a.ID, b.ID) })
	return users, nil
}

// DeleteUser removes the user and unlinks its greetings.
func (s *MemoryStore) DeleteUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newError(memoryBackend, "delete_user", ErrClosed)
	}
	u, ok := s.users[username]
	if !ok {
		return newError(memoryBackend, "delete_user", ErrNotFound)
	}
	delete(s.users, username)
	for _, g := range s.greetings {
		if g.UserID != nil && *g.UserID == u.ID {
			g.UserID = nil
		}
	}
	return nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, newError(memoryBackend, "count_users", ErrClosed)
	}
	return int64(len(s.users)), nil
}

func (s *MemoryStore) InsertGreeting(_ context.Context, g *Greeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newError(memoryBackend, "insert_greeting", ErrClosed)
	}
	s.nextGreet++
	g.ID = s.nextGreet
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	stored := *g
	if g.UserID != nil {
		id := *g.UserID
		stored.UserID = &id
	}
	stored.Username = ""
	s.greetings = append(s.greetings, &stored)
	return nil
}

func (s *MemoryStore) ListGreetings(_ context.Context) ([]*Greeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, newError(memoryBackend, "list_greetings", ErrClosed)
	}
	return s.collectLocked(func(*Greeting) bool { return true }), nil
}

func (s *MemoryStore) ListGreetingsByUser(_ context.Context, userID int64) ([]*Greeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, newError(memoryBackend, "list_greetings_by_user", ErrClosed)
	}
	return s.collectLocked(func(g *Greeting) bool {
		return g.UserID != nil && *g.UserID == userID
	}), nil
}

func (s *MemoryStore) CountGreetings(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, newError(memoryBackend, "count_greetings", ErrClosed)
	}
	return int64(len(s.greetings)), nil
}

func (s *MemoryStore) TopGreeted(_ context.Context, limit int) ([]UserCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, newError(memoryBackend, "top_greeted", ErrClosed)
	}

	names := s.usernamesLocked()
	counts := make(map[string]int64)
	for _, g := range s.greetings {
		if g.UserID == nil {
			continue
		}
		if name, ok := names[*g.UserID]; ok {
			counts[name]++
		}
	}

	top := make([]UserCount, 0, len(counts))
	for name, n := range counts {
		top = append(top, UserCount{Username: name, Count: n})
	}
	slices.SortFunc(top, func(a, b UserCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	if limit >= 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (s *MemoryStore) DeleteGreetingsBefore(_ context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, newError(memoryBackend, "delete_greetings_before", ErrClosed)
	}
	before := len(s.greetings)
	s.greetings = slices.DeleteFunc(s.greetings, func(g *Greeting) bool {
		return g.CreatedAt.Before(t)
	})
	return int64(before - len(s.greetings)), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return newError(memoryBackend, "ping", ErrClosed)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) usernamesLocked() map[int64]string {
	names := make(map[int64]string, len(s.users))
	for _, u := range s.users {
		names[u.ID] = u.Username
	}
	return names
}

func (s *MemoryStore) collectLocked(keep func(*Greeting) bool) []*Greeting {
	names := s.usernamesLocked()
	out := make([]*Greeting, 0, len(s.greetings))
	for _, g := range s.greetings {
		if !keep(g) {
			continue
		}
		cp := *g
		if g.UserID != nil {
			id := *g.UserID
			cp.UserID = &id
			cp.Username = names[id]
		}
		out = append(out, &cp)
	}
	return out
}
