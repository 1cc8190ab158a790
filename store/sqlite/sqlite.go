// Package sqlite provides a SQLite-backed StructuredStore. Metadata is
// stored as a JSON column and filtered with json_extract, so exact-match
// queries run inside the database instead of in application code.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/ragfusion"
)

// Store implements ragfusion.StructuredStore on SQLite.
type Store struct {
	db        *sql.DB
	tableName string
}

// Options configures the SQLite store.
type Options struct {
	// Path is the database file, or ":memory:" for an in-process database.
	Path string
	// TableName defaults to "chunks".
	TableName string
}

// New opens (and if needed creates) the chunk table at the given path.
func New(opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "chunks"
	}

	s := &Store{db: db, tableName: tableName}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var _ ragfusion.StructuredStore = (*Store)(nil)

func (s *Store) initSchema() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			length INTEGER NOT NULL,
			metadata TEXT NOT NULL
		)`, s.tableName)

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Add inserts or replaces chunks. Replaced chunks keep their original
// sequence number so filter order stays stable across rebuilds.
func (s *Store) Add(ctx context.Context, chunks []ragfusion.Chunk) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, chunk_index, content, start_offset, length, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			start_offset = excluded.start_offset,
			length = excluded.length,
			metadata = excluded.metadata`, s.tableName)

	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", chunk.ID, err)
		}
		if _, err := s.db.ExecContext(ctx, query,
			chunk.ID, chunk.DocumentID, chunk.Index, chunk.Text,
			chunk.Offset, chunk.Length, string(metadata),
		); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// Filter returns chunks whose metadata matches every filter exactly, in
// insertion order. Filter keys are applied with json_extract in a stable
// (sorted) order; limit <= 0 means no limit.
func (s *Store) Filter(ctx context.Context, filters map[string]string, limit int) ([]ragfusion.Chunk, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT id, document_id, chunk_index, content, start_offset, length, metadata FROM %s", s.tableName)

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]any, 0, 2*len(keys)+1)
	if len(keys) > 0 {
		sb.WriteString(" WHERE ")
		for i, key := range keys {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString("json_extract(metadata, ?) = ?")
			args = append(args, jsonPath(key), filters[key])
		}
	}
	sb.WriteString(" ORDER BY seq")
	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("filter chunks: %w", err)
	}
	defer rows.Close()

	var out []ragfusion.Chunk
	for rows.Next() {
		var chunk ragfusion.Chunk
		var metadata string
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index,
			&chunk.Text, &chunk.Offset, &chunk.Length, &metadata); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

// jsonPath addresses key as a quoted object label, so keys containing dots
// or quotes select the literal key instead of being parsed as path syntax.
func jsonPath(key string) string {
	key = strings.ReplaceAll(key, `\`, `\\`)
	key = strings.ReplaceAll(key, `"`, `\"`)
	return `$."` + key + `"`
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
