// Package index provides a brute-force exact nearest-neighbor index over
// chunk embeddings. Exact search keeps results reproducible at the scale
// this pipeline targets (tens of thousands of chunks); approximate indexing
// structures are out of scope.
package index

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/smallnest/ragfusion"
)

const (
	vectorsFile = "vectors.gob"
	chunksFile  = "chunks.json"
)

// SearchHit is one nearest-neighbor match: the stored chunk and its L2
// distance to the query vector (smaller means more similar).
type SearchHit struct {
	Chunk    ragfusion.Chunk
	Distance float64
}

// FlatIndex holds (chunk, vector) pairs and answers exact L2 nearest
// neighbor queries. Search is safe for concurrent callers; Build, Persist
// and Restore take the writer side of the lock.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	chunks    []ragfusion.Chunk
	vectors   [][]float32
}

// NewFlatIndex creates an empty index with a fixed vector dimension.
func NewFlatIndex(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, &ragfusion.ConfigurationError{Field: "dimension", Reason: "must be positive"}
	}
	return &FlatIndex{dimension: dimension}, nil
}

// Dimension returns the configured vector dimension.
func (x *FlatIndex) Dimension() int {
	return x.dimension
}

// Len returns the number of indexed entries.
func (x *FlatIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Build replaces the index contents with the given chunks and vectors. The
// two slices must have equal length and every vector must match the index
// dimension.
func (x *FlatIndex) Build(chunks []ragfusion.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return &ragfusion.DimensionMismatchError{Want: len(chunks), Got: len(vectors)}
	}
	for _, vec := range vectors {
		if len(vec) != x.dimension {
			return &ragfusion.DimensionMismatchError{Want: x.dimension, Got: len(vec)}
		}
	}

	newChunks := make([]ragfusion.Chunk, len(chunks))
	copy(newChunks, chunks)
	newVectors := make([][]float32, len(vectors))
	for i, vec := range vectors {
		newVectors[i] = make([]float32, len(vec))
		copy(newVectors[i], vec)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.chunks = newChunks
	x.vectors = newVectors
	return nil
}

// Search returns up to k entries nearest to the query vector by L2 distance,
// ascending. An empty index yields an empty result, not an error. Ties break
// by insertion order so repeated queries return identical orderings.
func (x *FlatIndex) Search(query []float32, k int) ([]SearchHit, error) {
	if k <= 0 {
		return nil, &ragfusion.InvalidArgumentError{Argument: "k", Reason: "must be positive"}
	}
	if len(query) != x.dimension {
		return nil, &ragfusion.DimensionMismatchError{Want: x.dimension, Got: len(query)}
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.chunks) == 0 {
		return []SearchHit{}, nil
	}

	type scored struct {
		idx  int
		dist float64
	}
	scores := make([]scored, len(x.vectors))
	for i, vec := range x.vectors {
		scores[i] = scored{idx: i, dist: l2Distance(query, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].dist < scores[j].dist
	})

	if k > len(scores) {
		k = len(scores)
	}
	hits := make([]SearchHit, k)
	for i := 0; i < k; i++ {
		hits[i] = SearchHit{
			Chunk:    x.chunks[scores[i].idx],
			Distance: scores[i].dist,
		}
	}
	return hits, nil
}

// persistedVectors is the on-disk layout of the vector artifact.
type persistedVectors struct {
	Dimension int
	Vectors   [][]float32
}

// Persist writes the index to a directory as two artifacts: the vector
// matrix and the chunk records. A restored copy answers queries identically
// to the original.
func (x *FlatIndex) Persist(dir string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	vf, err := os.Create(filepath.Join(dir, vectorsFile))
	if err != nil {
		return fmt.Errorf("create vectors artifact: %w", err)
	}
	defer vf.Close()
	if err := gob.NewEncoder(vf).Encode(persistedVectors{
		Dimension: x.dimension,
		Vectors:   x.vectors,
	}); err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}

	cf, err := os.Create(filepath.Join(dir, chunksFile))
	if err != nil {
		return fmt.Errorf("create chunks artifact: %w", err)
	}
	defer cf.Close()
	if err := json.NewEncoder(cf).Encode(x.chunks); err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}

	return nil
}

// Restore loads an index previously written by Persist. The two artifacts
// are validated against each other: disagreeing counts mean the index is
// corrupt and cannot safely serve queries.
func Restore(dir string) (*FlatIndex, error) {
	vf, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, &ragfusion.CorruptIndexError{Location: dir, Reason: fmt.Sprintf("vectors artifact: %v", err)}
	}
	defer vf.Close()

	var pv persistedVectors
	if err := gob.NewDecoder(vf).Decode(&pv); err != nil {
		return nil, &ragfusion.CorruptIndexError{Location: dir, Reason: fmt.Sprintf("decode vectors: %v", err)}
	}
	if pv.Dimension <= 0 {
		return nil, &ragfusion.CorruptIndexError{Location: dir, Reason: "non-positive dimension"}
	}

	cf, err := os.Open(filepath.Join(dir, chunksFile))
	if err != nil {
		return nil, &ragfusion.CorruptIndexError{Location: dir, Reason: fmt.Sprintf("chunks artifact: %v", err)}
	}
	defer cf.Close()

	var chunks []ragfusion.Chunk
	if err := json.NewDecoder(cf).Decode(&chunks); err != nil {
		return nil, &ragfusion.CorruptIndexError{Location: dir, Reason: fmt.Sprintf("decode chunks: %v", err)}
	}

	if len(chunks) != len(pv.Vectors) {
		return nil, &ragfusion.CorruptIndexError{
			Location: dir,
			Reason:   fmt.Sprintf("%d chunks but %d vectors", len(chunks), len(pv.Vectors)),
		}
	}
	for _, vec := range pv.Vectors {
		if len(vec) != pv.Dimension {
			return nil, &ragfusion.CorruptIndexError{Location: dir, Reason: "vector dimension disagrees with header"}
		}
	}

	return &FlatIndex{
		dimension: pv.Dimension,
		chunks:    chunks,
		vectors:   pv.Vectors,
	}, nil
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
