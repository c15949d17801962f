package session

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestGetOrCreateAllocatesToken(t *testing.T) {
	store := NewStore(zaptest.NewLogger(t))

	token := store.GetOrCreate("", "german")
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}

	sess, err := store.Get(token)
	if err != nil {
		t.Fatalf("Get failed for freshly created token: %v", err)
	}
	if sess.Initialized {
		t.Error("Fresh session must be uninitialized")
	}
	if sess.Language != "german" {
		t.Errorf("Expected default language german, got %s", sess.Language)
	}
}

func TestGetOrCreateIdempotentForKnownToken(t *testing.T) {
	store := NewStore(zaptest.NewLogger(t))

	token := store.GetOrCreate("", "german")
	again := store.GetOrCreate(token, "german")

	if again != token {
		t.Errorf("Expected same token back, got %s vs %s", again, token)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Len())
	}
}

func TestGetOrCreateUnknownTokenAllocatesNew(t *testing.T) {
	store := NewStore(zaptest.NewLogger(t))

	token := store.GetOrCreate("stale-cookie-value", "german")
	if token == "stale-cookie-value" {
		t.Error("Unknown token must not be adopted")
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", store.Len())
	}
}

func TestGetUnknownToken(t *testing.T) {
	store := NewStore(zaptest.NewLogger(t))

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestExpiredSessionEvicted(t *testing.T) {
	store := NewStore(zaptest.NewLogger(t))

	token := store.GetOrCreate("", "german")
	sess, err := store.Get(token)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	sess.ExpiresAt = time.Now().Add(-1 * time.Minute)

	if _, err := store.Get(token); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for expired session, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expired session must be evicted, store has %d", store.Len())
	}

	// A stale cookie with the old token starts over with a new session.
	fresh := store.GetOrCreate(token, "german")
	if fresh == token {
		t.Error("Expired token must not be reused")
	}
}
