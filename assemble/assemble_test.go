package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/ragfusion"
)

func fusedContext(results ...ragfusion.RetrievalResult) ragfusion.FusedContext {
	return ragfusion.FusedContext{Results: results}
}

func hybridResult(id, text string, metadata map[string]string) ragfusion.RetrievalResult {
	return ragfusion.RetrievalResult{
		Source:  ragfusion.SourceHybrid,
		ChunkID: id,
		Chunk:   ragfusion.Chunk{ID: id, Text: text, Metadata: metadata},
		Score:   0.9,
	}
}

func TestAssembleFormat(t *testing.T) {
	fc := fusedContext(hybridResult("aca_chunk_0", "The ACA provides coverage.", map[string]string{
		"topic":  "insurance",
		"region": "us",
	}))

	got, n := Assemble(fc, 0)
	assert.Equal(t, 1, n)

	want := "[Document 1 - Source: Hybrid]\n" +
		"Region: us\n" +
		"Topic: insurance\n" +
		"Text: The ACA provides coverage.\n"
	assert.Equal(t, want, got)
}

func TestAssembleSkipsChunkBookkeepingKeys(t *testing.T) {
	fc := fusedContext(hybridResult("aca_chunk_0", "body", map[string]string{
		"parent_id":   "aca",
		"chunk_index": "0",
		"chunk_total": "3",
		"category":    "policy",
	}))

	got, _ := Assemble(fc, 0)
	assert.Contains(t, got, "Category: policy\n")
	assert.NotContains(t, got, "parent_id")
	assert.NotContains(t, got, "chunk_index")
	assert.NotContains(t, got, "chunk_total")
}

func TestAssembleNumbersSegmentsInFusedOrder(t *testing.T) {
	fc := fusedContext(
		hybridResult("a", "first", nil),
		ragfusion.RetrievalResult{
			Source:  ragfusion.SourceVector,
			ChunkID: "b",
			Chunk:   ragfusion.Chunk{ID: "b", Text: "second"},
		},
	)

	got, n := Assemble(fc, 0)
	assert.Equal(t, 2, n)

	first := strings.Index(got, "[Document 1 - Source: Hybrid]")
	second := strings.Index(got, "[Document 2 - Source: Vector]")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Contains(t, got, "Text: first\n")
	assert.Contains(t, got, "Text: second\n")
}

func TestAssembleBudgetKeepsWholeSegments(t *testing.T) {
	fc := fusedContext(
		hybridResult("a", strings.Repeat("x", 40), nil),
		hybridResult("b", strings.Repeat("y", 40), nil),
		hybridResult("c", strings.Repeat("z", 40), nil),
	)

	full, total := Assemble(fc, 0)
	require.Equal(t, 3, total)

	// A budget past the first segment but short of all three drops whole
	// trailing segments, never truncates mid-segment.
	got, n := Assemble(fc, len(full)-1)
	assert.Equal(t, 2, n)
	assert.Contains(t, got, "Text: "+strings.Repeat("x", 40))
	assert.Contains(t, got, "Text: "+strings.Repeat("y", 40))
	assert.NotContains(t, got, strings.Repeat("z", 40))
}

func TestAssembleFirstSegmentAlwaysIncluded(t *testing.T) {
	fc := fusedContext(hybridResult("a", strings.Repeat("x", 500), nil))

	got, n := Assemble(fc, 10)
	assert.Equal(t, 1, n)
	assert.Contains(t, got, strings.Repeat("x", 500))
}

func TestAssembleEmptyContext(t *testing.T) {
	got, n := Assemble(ragfusion.FusedContext{}, 100)
	assert.Equal(t, 0, n)
	assert.Empty(t, got)
}
