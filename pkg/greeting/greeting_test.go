package greeting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"webeng-hq/hello/pkg/storage"
	"webeng-hq/hello/pkg/users"
)

func madrid(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func newTestService(t *testing.T, at time.Time) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := NewService(store, madrid(t),
		WithClock(func() time.Time { return at }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, store
}

func TestSalutation(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Good Evening"},
		{6, "Good Evening"},
		{7, "Good Morning"},
		{15, "Good Morning"},
		{16, "Good Afternoon"},
		{20, "Good Afternoon"},
		{21, "Good Evening"},
		{23, "Good Evening"},
	}
	for _, tt := range tests {
		if got := Salutation(tt.hour); got != tt.want {
			t.Errorf("Salutation(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestService_GreetUsesLocation(t *testing.T) {
	// 06:30 UTC in January is 07:30 in Madrid.
	at := time.Date(2024, 1, 15, 6, 30, 0, 0, time.UTC)
	svc, _ := newTestService(t, at)

	msg, ts, err := svc.Greet(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("Greet() error = %v", err)
	}
	if msg != "Good Morning, Alice!" {
		t.Errorf("unexpected message %q", msg)
	}
	if !ts.Equal(at) {
		t.Errorf("expected timestamp %v, got %v", at, ts)
	}
}

func TestService_GreetDefaultName(t *testing.T) {
	svc, _ := newTestService(t, time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC))

	msg, _, err := svc.Greet(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Good Evening, World!" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestService_GreetLinksRegisteredUser(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))
	if err := store.CreateUser(ctx, &storage.User{Username: "bob", PasswordHash: "h", Role: "USER"}); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Greet(ctx, "bob"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Greet(ctx, "stranger"); err != nil {
		t.Fatal(err)
	}

	all, err := svc.AllHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
	if all[0].Username == nil || *all[0].Username != "bob" {
		t.Errorf("expected first entry linked to bob, got %+v", all[0])
	}
	if all[0].Message != "Good Afternoon, bob!" {
		t.Errorf("unexpected message %q", all[0].Message)
	}
	if all[1].Username != nil {
		t.Errorf("expected stranger entry unlinked, got %v", *all[1].Username)
	}

	mine, err := svc.History(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 entry for bob, got %d", len(mine))
	}
}

func TestService_HistoryUnknownUser(t *testing.T) {
	svc, _ := newTestService(t, time.Now())
	if _, err := svc.History(context.Background(), "ghost"); !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
