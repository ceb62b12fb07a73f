package logging

import (
	"context"
	"testing"
)

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" || GetUser(ctx) != "" || GetClientIP(ctx) != "" {
		t.Fatal("expected empty values on a bare context")
	}

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUser(ctx, "admin")
	ctx = WithClientIP(ctx, "192.0.2.7")

	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetUser(ctx); got != "admin" {
		t.Errorf("GetUser() = %q", got)
	}
	if got := GetClientIP(ctx); got != "192.0.2.7" {
		t.Errorf("GetClientIP() = %q", got)
	}
}

func TestExtractContextFields(t *testing.T) {
	if fields := extractContextFields(context.Background()); len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}

	ctx := WithUser(context.Background(), "bob")
	fields := extractContextFields(ctx)
	if len(fields) != 2 || fields[0] != "user" || fields[1] != "bob" {
		t.Errorf("unexpected fields %v", fields)
	}
}
