// Package fusion merges the per-adapter result lists into a single
// deduplicated, priority-ordered context. Fusion is a pure function of its
// inputs: the same lists always produce the same fused context.
package fusion

import (
	"fmt"
	"sort"

	"github.com/smallnest/ragfusion"
)

// Fuse flattens the adapter result lists, deduplicates by chunk ID, orders
// the survivors, and truncates to maxResults.
//
// When the same chunk ID appears in several lists, the entry from the
// higher-priority source wins (Hybrid over Vector over Structured); within
// the same source, the higher score wins. The final order groups results by
// source priority (highest first) and sorts by descending score within each
// group. Ties keep their first-seen order.
func Fuse(lists [][]ragfusion.RetrievalResult, maxResults int) (ragfusion.FusedContext, error) {
	if maxResults <= 0 {
		return ragfusion.FusedContext{}, &ragfusion.InvalidArgumentError{
			Argument: "maxResults",
			Reason:   fmt.Sprintf("must be positive, got %d", maxResults),
		}
	}

	byID := make(map[string]ragfusion.RetrievalResult)
	order := make([]string, 0)

	for _, list := range lists {
		for _, res := range list {
			existing, ok := byID[res.ChunkID]
			if !ok {
				byID[res.ChunkID] = res
				order = append(order, res.ChunkID)
				continue
			}
			if res.Source > existing.Source ||
				(res.Source == existing.Source && res.Score > existing.Score) {
				byID[res.ChunkID] = res
			}
		}
	}

	results := make([]ragfusion.RetrievalResult, 0, len(order))
	for _, id := range order {
		results = append(results, byID[id])
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Source != results[j].Source {
			return results[i].Source > results[j].Source
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return ragfusion.FusedContext{Results: results}, nil
}
