package staging

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	in := payload{Name: "session", Count: 3}
	if err := s.Set(ctx, "k1", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out payload
	if err := s.Get(ctx, "k1", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}

	ok, err := s.Exists(ctx, "k1")
	if err != nil || !ok {
		t.Errorf("Exists = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestMemoryStoreMiss(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	var out payload
	if err := s.Get(context.Background(), "absent", &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get absent = %v, want ErrNotFound", err)
	}
	if err := s.Delete(context.Background(), "absent"); err != nil {
		t.Fatalf("Delete absent must not error: %v", err)
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	// Long janitor interval: expiry must be enforced by the read path alone.
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "k", payload{Name: "x"}, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	var out payload
	if err := s.Get(ctx, "k", &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired Get = %v, want ErrNotFound", err)
	}
	// Even a raw existence check must report the key as gone.
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Fatal("expired key still visible via Exists")
	}
}

func TestMemoryStoreJanitorSweep(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, payload{Name: k}, 5*time.Millisecond); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	time.Sleep(60 * time.Millisecond)

	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	if n != 0 {
		t.Fatalf("janitor left %d expired entries", n)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()
	ctx := context.Background()

	_ = s.Set(ctx, "k", payload{Name: "x"}, time.Minute)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Fatal("deleted key still exists")
	}
}
