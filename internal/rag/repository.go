package rag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const tableName = "portfolio_embeddings"

// PgRepository is the pgvector-backed VectorStore.
type PgRepository struct {
	db     *pgxpool.Pool
	dims   int
	metric DistanceMetric
}

func NewPgRepository(db *pgxpool.Pool, dims int, metric DistanceMetric) *PgRepository {
	return &PgRepository{db: db, dims: dims, metric: metric}
}

// Migrate creates the extension, table and HNSW index if they are missing.
func (r *PgRepository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         BIGSERIAL PRIMARY KEY,
				content    TEXT NOT NULL,
				embedding  vector(%d) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tableName, r.dims),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_embedding_%s_idx
			ON %s USING hnsw (embedding %s)`,
			tableName, r.metric, tableName, r.metric.opsClass()),
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %w", ErrStore, err)
		}
	}
	return nil
}

func (r *PgRepository) Insert(ctx context.Context, content string, embedding []float32) (int64, error) {
	if err := checkDimensions(embedding, r.dims); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO portfolio_embeddings (content, embedding)
		VALUES ($1, $2)
		RETURNING id
	`, content, pgvector.NewVector(embedding)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert entry: %w", ErrStore, err)
	}

	return id, nil
}

// Nearest runs the similarity search with the configured metric.
func (r *PgRepository) Nearest(ctx context.Context, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if err := checkDimensions(embedding, r.dims); err != nil {
		return nil, err
	}

	op := r.metric.operator()
	query := fmt.Sprintf(`
		SELECT id, content, embedding %s $1 AS distance
		FROM portfolio_embeddings
		ORDER BY embedding %s $1
		LIMIT $2
	`, op, op)

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest query: %w", ErrStore, err)
	}
	defer rows.Close()

	matches := make([]Match, 0, k)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Content, &m.Distance); err != nil {
			return nil, fmt.Errorf("%w: scan match: %w", ErrStore, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: nearest rows: %w", ErrStore, err)
	}

	return matches, nil
}

// GetEntry loads a single entry including its embedding.
func (r *PgRepository) GetEntry(ctx context.Context, id int64) (*Entry, error) {
	var (
		e   Entry
		vec pgvector.Vector
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, content, embedding, created_at
		FROM portfolio_embeddings
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Content, &vec, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: get entry %d: %w", ErrStore, id, err)
	}
	e.Embedding = vec.Slice()
	return &e, nil
}

func (r *PgRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM portfolio_embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count entries: %w", ErrStore, err)
	}
	return n, nil
}

func (r *PgRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStore, err)
	}
	return nil
}

var _ VectorStore = (*PgRepository)(nil)
