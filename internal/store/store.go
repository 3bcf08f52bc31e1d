// Package store persists research and script records for the history views.
// Three backends share one contract: a JSON file, SQLite and Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/google/uuid"
)

// Backend names accepted by Open.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Backend string // json (default), sqlite, postgres
	Path    string // file path for json and sqlite
	DSN     string // postgres connection string
}

// Open returns the configured history store.
func Open(ctx context.Context, c Config) (engine.HistoryStore, error) {
	switch c.Backend {
	case "", BackendJSON:
		return OpenJSONFile(c.Path)
	case BackendSQLite:
		return OpenSQLite(ctx, c.Path)
	case BackendPostgres:
		return OpenPostgres(ctx, c.DSN)
	}
	return nil, fmt.Errorf("store: unknown backend %q", c.Backend)
}

// stamp assigns a fresh ID and UTC creation time.
func stamp(r *engine.Record) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if r.Inputs == nil {
		r.Inputs = map[string]any{}
	}
	if r.Plan == nil {
		r.Plan = map[string]any{}
	}
	if r.SelectedResults == nil {
		r.SelectedResults = []engine.ContentItem{}
	}
	if r.Errors == nil {
		r.Errors = []string{}
	}
}
