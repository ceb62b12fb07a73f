package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"webeng-hq/hello/pkg/config"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteForTest(t *testing.T, driver string) Store {
	t.Helper()
	cfg := config.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "nested", "hello.db"),
		Driver:       driver,
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		JournalMode:  "WAL",
		BusyTimeout:  5 * time.Second,
	}
	s, err := NewSQLiteStore(context.Background(), cfg, discardLogger())
	if err != nil {
		if driver == "sqlite3" && strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skip("go-sqlite3 requires cgo")
		}
		t.Fatalf("NewSQLiteStore(%s) error = %v", driver, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteForTest(t, "sqlite")) })
	t.Run("sqlite3", func(t *testing.T) { fn(t, newSQLiteForTest(t, "sqlite3")) })
}

func mustCreateUser(t *testing.T, s Store, name, role string) *User {
	t.Helper()
	u := &User{Username: name, PasswordHash: "hash-" + name, Role: role, CreatedAt: epoch}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", name, err)
	}
	return u
}

func mustGreet(t *testing.T, s Store, name string, userID *int64, at time.Time) {
	t.Helper()
	g := &Greeting{Name: name, Message: "Good Morning, " + name + "!", CreatedAt: at, UserID: userID}
	if err := s.InsertGreeting(context.Background(), g); err != nil {
		t.Fatalf("InsertGreeting(%s) error = %v", name, err)
	}
	if g.ID == 0 {
		t.Fatal("expected greeting ID to be assigned")
	}
}

func TestStore_Users(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		alice := mustCreateUser(t, s, "alice", "ADMIN")
		bob := mustCreateUser(t, s, "bob", "USER")
		if alice.ID == 0 || bob.ID == alice.ID {
			t.Fatalf("expected distinct IDs, got %d and %d", alice.ID, bob.ID)
		}

		got, err := s.GetUser(ctx, "alice")
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if got.ID != alice.ID || got.Role != "ADMIN" || got.PasswordHash != "hash-alice" {
			t.Errorf("unexpected user %+v", got)
		}
		if !got.CreatedAt.Equal(epoch) {
			t.Errorf("expected CreatedAt %v, got %v", epoch, got.CreatedAt)
		}

		users, err := s.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers() error = %v", err)
		}
		if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
			t.Errorf("unexpected users %+v", users)
		}

		if n, _ := s.CountUsers(ctx); n != 2 {
			t.Errorf("CountUsers() = %d, want 2", n)
		}

		if err := s.DeleteUser(ctx, "bob"); err != nil {
			t.Fatalf("DeleteUser() error = %v", err)
		}
		if _, err := s.GetUser(ctx, "bob"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestStore_UserErrors(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustCreateUser(t, s, "alice", "USER")

		err := s.CreateUser(ctx, &User{Username: "alice", PasswordHash: "x", Role: "USER"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
		var serr *Error
		if !errors.As(err, &serr) || serr.Op != "create_user" {
			t.Errorf("expected *Error with op create_user, got %v", err)
		}

		if _, err := s.GetUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := s.DeleteUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on delete, got %v", err)
		}
	})
}

func TestStore_Greetings(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		alice := mustCreateUser(t, s, "alice", "USER")

		mustGreet(t, s, "alice", &alice.ID, epoch)
		mustGreet(t, s, "World", nil, epoch.Add(time.Minute))
		mustGreet(t, s, "alice", &alice.ID, epoch.Add(2*time.Minute))

		all, err := s.ListGreetings(ctx)
		if err != nil {
			t.Fatalf("ListGreetings() error = %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 greetings, got %d", len(all))
		}
		if all[0].Username != "alice" || all[1].Username != "" || all[1].UserID != nil {
			t.Errorf("unexpected user links: %+v %+v", all[0], all[1])
		}
		if all[1].Name != "World" || !all[1].CreatedAt.Equal(epoch.Add(time.Minute)) {
			t.Errorf("unexpected greeting %+v", all[1])
		}

		mine, err := s.ListGreetingsByUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListGreetingsByUser() error = %v", err)
		}
		if len(mine) != 2 {
			t.Errorf("expected 2 greetings for alice, got %d", len(mine))
		}

		if n, _ := s.CountGreetings(ctx); n != 3 {
			t.Errorf("CountGreetings() = %d, want 3", n)
		}
	})
}

func TestStore_DeleteUserUnlinksGreetings(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		bob := mustCreateUser(t, s, "bob", "USER")
		mustGreet(t, s, "bob", &bob.ID, epoch)

		if err := s.DeleteUser(ctx, "bob"); err != nil {
			t.Fatalf("DeleteUser() error = %v", err)
		}

		all, _ := s.ListGreetings(ctx)
		if len(all) != 1 {
			t.Fatalf("expected greeting kept, got %d", len(all))
		}
		if all[0].UserID != nil || all[0].Username != "" {
			t.Errorf("expected greeting unlinked, got %+v", all[0])
		}
	})
}

func TestStore_TopGreeted(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ids := map[string]int64{}
		for _, name := range []string{"ann", "ben", "cat", "dan"} {
			ids[name] = mustCreateUser(t, s, name, "USER").ID
		}
		greet := func(name string, n int) {
			id := ids[name]
			for i := 0; i < n; i++ {
				mustGreet(t, s, name, &id, epoch)
			}
		}
		greet("ann", 2)
		greet("ben", 4)
		greet("cat", 2)
		greet("dan", 1)
		mustGreet(t, s, "stranger", nil, epoch)

		top, err := s.TopGreeted(ctx, 3)
		if err != nil {
			t.Fatalf("TopGreeted() error = %v", err)
		}
		want := []UserCount{{"ben", 4}, {"ann", 2}, {"cat", 2}}
		if len(top) != len(want) {
			t.Fatalf("expected %d entries, got %+v", len(want), top)
		}
		for i := range want {
			if top[i] != want[i] {
				t.Errorf("top[%d] = %+v, want %+v", i, top[i], want[i])
			}
		}
	})
}

func TestStore_DeleteGreetingsBefore(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		mustGreet(t, s, "old", nil, epoch.Add(-48*time.Hour))
		mustGreet(t, s, "old", nil, epoch.Add(-25*time.Hour))
		mustGreet(t, s, "new", nil, epoch)

		n, err := s.DeleteGreetingsBefore(ctx, epoch.Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("DeleteGreetingsBefore() error = %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 deleted, got %d", n)
		}
		if c, _ := s.CountGreetings(ctx); c != 1 {
			t.Errorf("expected 1 greeting left, got %d", c)
		}
	})
}

func TestStore_ConcurrentInserts(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.InsertGreeting(ctx, &Greeting{Name: "x", Message: "Good Evening, x!"})
			}()
		}
		wg.Wait()

		if n, _ := s.CountGreetings(ctx); n != 20 {
			t.Errorf("expected 20 greetings, got %d", n)
		}
	})
}

func TestStore_Ping(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Close()

	if err := s.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := s.ListUsers(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{"memory", config.StorageConfig{Backend: "memory"}, false},
		{"sqlite", config.StorageConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{
			Path: filepath.Join(t.TempDir(), "open.db"), Driver: "sqlite", JournalMode: "WAL", BusyTimeout: time.Second,
		}}, false},
		{"unknown backend", config.StorageConfig{Backend: "postgres"}, true},
		{"sqlite without path", config.StorageConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{Driver: "sqlite"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(context.Background(), tt.cfg, discardLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				_ = s.Close()
			}
		})
	}
}
