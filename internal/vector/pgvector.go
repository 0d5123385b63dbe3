package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// PgVectorIndex keeps vectors in a PostgreSQL table using the pgvector extension.
// The table is dropped and recreated on open, so it never holds state from a previous run.
type PgVectorIndex struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
	size       int
	mu         sync.RWMutex
}

// NewPgVectorIndex connects to databaseURL and (re)creates table with a vector(dimensions) column.
func NewPgVectorIndex(ctx context.Context, databaseURL, table string, dimensions int) (*PgVectorIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("pgvector index requires a database url")
	}
	if table == "" {
		table = "kotae_embeddings"
	}
	// The extension must exist before the pool registers the vector codec on connect.
	if err := ensureExtension(ctx, databaseURL); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	idx := &PgVectorIndex{
		pool:       pool,
		table:      pgx.Identifier{table}.Sanitize(),
		dimensions: dimensions,
	}
	if err := idx.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func ensureExtension(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	return nil
}

func (p *PgVectorIndex) createTable(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, p.table),
		fmt.Sprintf(`CREATE TABLE %s (
			position  INTEGER PRIMARY KEY,
			embedding vector(%d) NOT NULL
		)`, p.table, p.dimensions),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("prepare pgvector table: %w", err)
		}
	}
	return nil
}

// Add inserts vectors in one transaction, continuing the position sequence.
func (p *PgVectorIndex) Add(ctx context.Context, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != p.dimensions {
			return fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", i, len(v), p.dimensions)
		}
	}
	if len(vectors) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	insert := fmt.Sprintf(`INSERT INTO %s (position, embedding) VALUES ($1, $2)`, p.table)
	for i, v := range vectors {
		batch.Queue(insert, p.size+i, pgvector.NewVector(v))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert vectors: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit vectors: %w", err)
	}
	p.size += len(vectors)
	return nil
}

// Search orders by the pgvector L2 operator, breaking ties by position.
func (p *PgVectorIndex) Search(ctx context.Context, query []float32, k int) ([]Neighbor, error) {
	if len(query) != p.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), p.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	rows, err := p.pool.Query(ctx, fmt.Sprintf(`
		SELECT position, embedding <-> $1 AS distance
		FROM %s
		ORDER BY distance, position
		LIMIT $2
	`, p.table), pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}
	defer rows.Close()

	var results []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.Position, &n.Distance); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

// Size returns the number of vectors inserted through this index.
func (p *PgVectorIndex) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// Dimensions returns the vector dimension.
func (p *PgVectorIndex) Dimensions() int {
	return p.dimensions
}

// Type returns the index type identifier.
func (p *PgVectorIndex) Type() string {
	return string(IndexTypePgVector)
}

// Close drops the table and releases the pool.
func (p *PgVectorIndex) Close() error {
	if p.pool == nil {
		return nil
	}
	ctx := context.Background()
	_, err := p.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, p.table))
	p.pool.Close()
	p.pool = nil
	if err != nil {
		return fmt.Errorf("drop pgvector table: %w", err)
	}
	return nil
}
