package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_dyut/internal/engine"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores records as JSONB rows.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a pgx pool and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("store: DATABASE_URL is required for the postgres backend")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("store: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}

	schema, err := schemaFS.ReadFile("schema/postgres.sql")
	if err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Save(ctx context.Context, r *engine.Record) (string, error) {
	stamp(r)
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("store: encode record: %w", err)
	}
	sum := r.Summarize()
	_, err = p.pool.Exec(ctx,
		`INSERT INTO dyut_records (id, created_at, prompt, category, num_results, total_scraped, record)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.CreatedAt, sum.Prompt, sum.Category, sum.NumResults, sum.TotalScraped, data)
	if err != nil {
		return "", fmt.Errorf("store: insert record: %w", err)
	}
	return r.ID, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*engine.Record, error) {
	if uuid.Validate(id) != nil {
		return nil, engine.ErrNotFound
	}
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT record FROM dyut_records WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get record: %w", err)
	}
	var r engine.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("store: decode record: %w", err)
	}
	return &r, nil
}

func (p *Postgres) List(ctx context.Context) ([]engine.Summary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, created_at, prompt, category, num_results, total_scraped
		 FROM dyut_records ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list records: %w", err)
	}
	defer rows.Close()

	out := []engine.Summary{}
	for rows.Next() {
		var sum engine.Summary
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.Prompt, &sum.Category, &sum.NumResults, &sum.TotalScraped); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		sum.CreatedAt = sum.CreatedAt.UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
