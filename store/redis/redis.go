// Package redis provides a Redis-backed StructuredStore. Chunks are stored
// as JSON values with an insertion-order list alongside, so exact-match
// filtering stays deterministic across calls.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/ragfusion"
	"github.com/smallnest/ragfusion/store"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces all keys, default "ragfusion:".
	Prefix string
}

// Store implements ragfusion.StructuredStore on Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a Redis-backed structured store.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "ragfusion:"
	}

	return &Store{client: client, prefix: prefix}
}

// NewWithClient wraps an existing client, useful for shared pools.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "ragfusion:"
	}
	return &Store{client: client, prefix: prefix}
}

var _ ragfusion.StructuredStore = (*Store)(nil)

func (s *Store) chunkKey(id string) string {
	return fmt.Sprintf("%schunk:%s", s.prefix, id)
}

func (s *Store) orderKey() string {
	return s.prefix + "chunks"
}

// Add stores chunks as JSON and records first-seen order in a list. Re-added
// chunk IDs overwrite the value but keep their original position.
func (s *Store) Add(ctx context.Context, chunks []ragfusion.Chunk) error {
	for _, chunk := range chunks {
		data, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("marshal chunk %s: %w", chunk.ID, err)
		}

		exists, err := s.client.Exists(ctx, s.chunkKey(chunk.ID)).Result()
		if err != nil {
			return fmt.Errorf("check chunk %s: %w", chunk.ID, err)
		}

		pipe := s.client.Pipeline()
		pipe.Set(ctx, s.chunkKey(chunk.ID), data, 0)
		if exists == 0 {
			pipe.RPush(ctx, s.orderKey(), chunk.ID)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("save chunk %s to redis: %w", chunk.ID, err)
		}
	}
	return nil
}

// Filter walks chunks in insertion order and returns those whose metadata
// matches every filter, up to limit (limit <= 0 means no limit).
func (s *Store) Filter(ctx context.Context, filters map[string]string, limit int) ([]ragfusion.Chunk, error) {
	ids, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list chunks from redis: %w", err)
	}
	if len(ids) == 0 {
		return []ragfusion.Chunk{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.chunkKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch chunks from redis: %w", err)
	}

	var out []ragfusion.Chunk
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Value expired or was deleted out of band; skip it.
			continue
		}
		var chunk ragfusion.Chunk
		if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
			return nil, fmt.Errorf("unmarshal chunk: %w", err)
		}
		if !store.MatchesFilters(chunk, filters) {
			continue
		}
		out = append(out, chunk)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
