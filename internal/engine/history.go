package engine

import (
	"context"
	"sync"
)

// HistoryStore persists research and script runs.
type HistoryStore interface {
	// Save assigns r a fresh ID and UTC creation time, stores it and returns the ID.
	Save(ctx context.Context, r *Record) (string, error)
	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Record, error)
	// List returns summaries, newest first.
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

var (
	historyMu sync.RWMutex
	history   HistoryStore
)

// SetHistory installs the history store used by the pipelines.
func SetHistory(h HistoryStore) {
	historyMu.Lock()
	history = h
	historyMu.Unlock()
}

// History returns the installed store, or nil.
func History() HistoryStore {
	historyMu.RLock()
	defer historyMu.RUnlock()
	return history
}

// track stores a run and returns its ID.
func track(ctx context.Context, r *Record) (string, error) {
	h := History()
	if h == nil {
		return "", StorageError("history store is not configured", nil)
	}
	id, err := h.Save(ctx, r)
	if err != nil {
		return "", asStorageError("save record", err)
	}
	metrics.RecordsStored.Add(1)
	return id, nil
}

func asStorageError(msg string, err error) error {
	if _, ok := err.(*ResearchError); ok {
		return err
	}
	return StorageError(msg, err)
}
