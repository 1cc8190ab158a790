// Package assemble renders a fused context into the labeled text block a
// generation model consumes. Each result becomes one segment under a
// "[Document N - Source: X]" header, followed by its metadata fields and
// the chunk text.
package assemble

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/smallnest/ragfusion"
)

// Metadata keys the splitter adds for chunk bookkeeping. The header already
// identifies the chunk, so these stay out of the rendered segment.
var internalKeys = map[string]bool{
	"parent_id":   true,
	"chunk_index": true,
	"chunk_total": true,
}

// Assemble renders the fused results into a single context string, keeping
// whole segments only. Segments are appended in fused order until adding the
// next one would push the total past budgetChars; the first segment is always
// included even when it alone exceeds the budget, so the context is never
// empty when there are results. budgetChars <= 0 means no budget.
//
// The second return value is the number of segments included.
func Assemble(fc ragfusion.FusedContext, budgetChars int) (string, int) {
	var sb strings.Builder
	included := 0

	for i, res := range fc.Results {
		segment := renderSegment(i+1, res)
		if budgetChars > 0 && included > 0 && sb.Len()+len("\n")+len(segment) > budgetChars {
			break
		}
		if included > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(segment)
		included++
	}

	return sb.String(), included
}

func renderSegment(n int, res ragfusion.RetrievalResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[Document %d - Source: %s]\n", n, res.Source)

	keys := make([]string, 0, len(res.Chunk.Metadata))
	for key := range res.Chunk.Metadata {
		if !internalKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", titleKey(key), res.Chunk.Metadata[key])
	}
	fmt.Fprintf(&sb, "Text: %s\n", res.Chunk.Text)

	return sb.String()
}

// titleKey upper-cases the first rune so "category" renders as "Category".
func titleKey(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}
