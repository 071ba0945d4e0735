package testsupport

import (
	"context"
	"testing"

	"github.com/ins8ai/wer/internal/config"
	"github.com/ins8ai/wer/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordRun inserts a run for tests using the provided store.
func RecordRun(t testing.TB, store *history.Store, run history.Run) *history.Run {
	t.Helper()

	recorded, err := store.Record(context.Background(), run)
	if err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return recorded
}
