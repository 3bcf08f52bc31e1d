package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// SQLite stores records in a single table. Summary columns are denormalised
// so List does not decode every record.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("store: sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	schema, err := schemaFS.ReadFile("schema/sqlite.sql")
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, r *engine.Record) (string, error) {
	stamp(r)
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("store: encode record: %w", err)
	}
	sum := r.Summarize()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, created_at, prompt, category, num_results, total_scraped, record) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.Format(time.RFC3339Nano), sum.Prompt, sum.Category, sum.NumResults, sum.TotalScraped, string(data))
	if err != nil {
		return "", fmt.Errorf("store: insert record: %w", err)
	}
	return r.ID, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*engine.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM records WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get record: %w", err)
	}
	var r engine.Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("store: decode record: %w", err)
	}
	return &r, nil
}

func (s *SQLite) List(ctx context.Context) ([]engine.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, prompt, category, num_results, total_scraped FROM records ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer rows.Close()

	out := []engine.Summary{}
	for rows.Next() {
		var sum engine.Summary
		var created string
		if err := rows.Scan(&sum.ID, &created, &sum.Prompt, &sum.Category, &sum.NumResults, &sum.TotalScraped); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("store: record %s created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
