// Package postgres provides a pgvector-backed HybridBackend. A single
// query combines vector distance ordering with JSONB metadata containment,
// which is what makes it the hybrid retrieval path.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/smallnest/ragfusion"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store implements ragfusion.HybridBackend using PostgreSQL with pgvector.
type Store struct {
	pool      DBPool
	tableName string
	dimension int
}

// Options configuration for the Postgres connection
type Options struct {
	ConnString string
	TableName  string // Default "chunks"
	Dimension  int    // Embedding dimension, required for schema creation
}

// New creates a new pgvector store with its own connection pool.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Dimension <= 0 {
		return nil, &ragfusion.ConfigurationError{
			Field:  "dimension",
			Reason: fmt.Sprintf("must be positive, got %d", opts.Dimension),
		}
	}

	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "chunks"
	}

	return &Store{
		pool:      pool,
		tableName: tableName,
		dimension: opts.Dimension,
	}, nil
}

// NewWithPool creates a store with an existing pool.
// Useful for testing with mocks
func NewWithPool(pool DBPool, tableName string, dimension int) *Store {
	if tableName == "" {
		tableName = "chunks"
	}
	return &Store{
		pool:      pool,
		tableName: tableName,
		dimension: dimension,
	}
}

var _ ragfusion.HybridBackend = (*Store)(nil)

// InitSchema creates the vector extension and chunk table if needed.
func (s *Store) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			length INTEGER NOT NULL,
			metadata JSONB NOT NULL,
			embedding vector(%d) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_metadata ON %s USING gin (metadata);
	`, s.tableName, s.dimension, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Add stores chunks with their embeddings. Vectors must match the
// configured dimension.
func (s *Store) Add(ctx context.Context, chunks []ragfusion.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return &ragfusion.DimensionMismatchError{Want: len(chunks), Got: len(vectors)}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, chunk_index, content, start_offset, length, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			chunk_index = EXCLUDED.chunk_index,
			content = EXCLUDED.content,
			start_offset = EXCLUDED.start_offset,
			length = EXCLUDED.length,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, s.tableName)

	for i, chunk := range chunks {
		if len(vectors[i]) != s.dimension {
			return &ragfusion.DimensionMismatchError{Want: s.dimension, Got: len(vectors[i])}
		}

		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		_, err = s.pool.Exec(ctx, query,
			chunk.ID, chunk.DocumentID, chunk.Index, chunk.Text,
			chunk.Offset, chunk.Length, metadataJSON, pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// QueryVector returns the k nearest chunks to the query vector whose
// metadata contains every filter pair, nearest first. Scores map L2
// distance into (0, 1] as 1/(1+distance).
func (s *Store) QueryVector(ctx context.Context, vector []float32, filters map[string]string, k int) ([]ragfusion.ScoredChunk, error) {
	if k <= 0 {
		return nil, &ragfusion.InvalidArgumentError{
			Argument: "k",
			Reason:   fmt.Sprintf("must be positive, got %d", k),
		}
	}
	if len(vector) != s.dimension {
		return nil, &ragfusion.DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}

	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal filters: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, document_id, chunk_index, content, start_offset, length, metadata,
			embedding <-> $1 AS distance
		FROM %s
		WHERE metadata @> $2
		ORDER BY embedding <-> $1
		LIMIT $3
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), filtersJSON, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []ragfusion.ScoredChunk
	for rows.Next() {
		var chunk ragfusion.Chunk
		var metadataJSON []byte
		var distance float64

		err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index,
			&chunk.Text, &chunk.Offset, &chunk.Length, &metadataJSON, &distance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}

		results = append(results, ragfusion.ScoredChunk{
			Chunk: chunk,
			Score: 1.0 / (1.0 + distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
