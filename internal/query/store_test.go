package query

import (
	"context"
	"testing"
	"time"
)

func TestMatchesResource(t *testing.T) {
	tests := []struct {
		key      string
		resource string
		want     bool
	}{
		{"services", "services", true},
		{"services?page=1", "services", true},
		{"my-services", "services", false},
		{"services-archive", "services", false},
		{"orders?status=pending", "orders", true},
		{"orders", "services", false},
	}
	for _, tt := range tests {
		if got := matchesResource(tt.key, tt.resource); got != tt.want {
			t.Errorf("matchesResource(%q, %q) = %v, want %v", tt.key, tt.resource, got, tt.want)
		}
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	if e, err := s.Get(ctx, "services"); err != nil || e != nil {
		t.Fatalf("get absent = %v, %v", e, err)
	}

	now := time.Now()
	if err := s.Set(ctx, "services?page=1", &Entry{Data: []byte(`a`), UpdatedAt: now}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "orders", &Entry{Data: []byte(`b`), UpdatedAt: now}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := s.MarkStale(ctx, "services"); err != nil {
		t.Fatalf("mark stale: %v", err)
	}

	e, err := s.Get(ctx, "services?page=1")
	if err != nil || e == nil {
		t.Fatalf("get = %v, %v", e, err)
	}
	// Stale entries keep their data for stale-while-revalidate serving.
	if !e.Stale || string(e.Data) != `a` {
		t.Fatalf("entry = %+v", e)
	}

	other, err := s.Get(ctx, "orders")
	if err != nil || other == nil || other.Stale {
		t.Fatalf("unrelated entry touched: %+v, %v", other, err)
	}
}

func TestRedisStalePatterns(t *testing.T) {
	s := &redisStore{prefix: "conecta:query:"}
	got := s.stalePatterns("services")
	want := []string{`conecta:query:services`, `conecta:query:services\?*`}
	if len(got) != len(want) {
		t.Fatalf("patterns = %q", got)
	}
	for i := range want {
		// The separator must be escaped: a bare `?` is a single-character
		// wildcard in Redis MATCH and would also sweep up e.g. "servicesX".
		if got[i] != want[i] {
			t.Errorf("pattern[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemStore_GetReturnsCopy(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	if err := s.Set(ctx, "services", &Entry{Data: []byte(`a`)}); err != nil {
		t.Fatalf("set: %v", err)
	}

	e, _ := s.Get(ctx, "services")
	e.Stale = true

	again, _ := s.Get(ctx, "services")
	if again.Stale {
		t.Fatal("mutating a returned entry leaked into the store")
	}
}
