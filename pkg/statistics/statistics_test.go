package statistics

import (
	"context"
	"encoding/json"
	"testing"

	"webeng-hq/hello/pkg/storage"
)

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	counts := map[string]int{"ann": 1, "ben": 3, "cat": 2, "dan": 2}
	for _, name := range []string{"ann", "ben", "cat", "dan"} {
		u := &storage.User{Username: name, PasswordHash: "h", Role: "USER"}
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < counts[name]; i++ {
			_ = store.InsertGreeting(ctx, &storage.Greeting{Name: name, Message: "m", UserID: &u.ID})
		}
	}
	_ = store.InsertGreeting(ctx, &storage.Greeting{Name: "World", Message: "m"})

	stats, err := NewService(store).Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stats.TotalUsers != 4 {
		t.Errorf("TotalUsers = %d, want 4", stats.TotalUsers)
	}
	if stats.TotalGreetings != 9 {
		t.Errorf("TotalGreetings = %d, want 9", stats.TotalGreetings)
	}

	want := []NameCount{{"ben", 3}, {"cat", 2}, {"dan", 2}}
	if len(stats.TopNames) != len(want) {
		t.Fatalf("TopNames = %+v", stats.TopNames)
	}
	for i := range want {
		if stats.TopNames[i] != want[i] {
			t.Errorf("TopNames[%d] = %+v, want %+v", i, stats.TopNames[i], want[i])
		}
	}
}

func TestService_GetEmpty(t *testing.T) {
	stats, err := NewService(storage.NewMemoryStore()).Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(stats)
	if string(body) != `{"totalUsers":0,"totalGreetings":0,"top3Names":[]}` {
		t.Errorf("unexpected JSON %s", body)
	}
}
