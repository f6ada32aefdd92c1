package testsupport

import (
	"context"
	"testing"

	"audioscribe/internal/config"
	"audioscribe/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a pending job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, urls ...string) *queue.Item {
	t.Helper()

	item, err := store.NewJob(context.Background(), urls)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return item
}
