// Package splitter turns documents into overlapping, bounded-length chunks,
// preferring cuts at sentence boundaries.
package splitter

import (
	"strconv"
	"strings"

	"github.com/smallnest/ragfusion"
)

// SentenceSplitter splits a document with a sliding window of chunkSize
// bytes. When a window would cut mid-sentence, it backs up to the last
// sentence terminator (a period followed by whitespace, or a newline) as
// long as that keeps the chunk past half the configured size.
type SentenceSplitter struct {
	chunkSize int
	overlap   int
}

// NewSentenceSplitter creates a SentenceSplitter. chunkSize must be positive
// and overlap must satisfy 0 <= overlap < chunkSize.
func NewSentenceSplitter(chunkSize, overlap int) (*SentenceSplitter, error) {
	if chunkSize <= 0 {
		return nil, &ragfusion.ConfigurationError{Field: "chunk_size", Reason: "must be positive"}
	}
	if overlap < 0 {
		return nil, &ragfusion.ConfigurationError{Field: "overlap", Reason: "must not be negative"}
	}
	if overlap >= chunkSize {
		return nil, &ragfusion.ConfigurationError{Field: "overlap", Reason: "must be smaller than chunk_size"}
	}
	return &SentenceSplitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split splits a single document into chunks in document order. Chunk IDs
// are stable across rebuilds of the same document, and each chunk inherits
// the document's metadata extended with chunk bookkeeping fields.
func (s *SentenceSplitter) Split(doc ragfusion.Document) []ragfusion.Chunk {
	spans := s.spans(doc.Text)

	chunks := make([]ragfusion.Chunk, 0, len(spans))
	for i, sp := range spans {
		text := doc.Text[sp.start:sp.end]
		stripped := strings.TrimSpace(text)
		lead := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
		offset := sp.start + lead
		if stripped == "" {
			offset = sp.start
		}

		metadata := make(map[string]string, len(doc.Metadata)+3)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["parent_id"] = doc.ID
		metadata["chunk_index"] = strconv.Itoa(i)
		metadata["chunk_total"] = strconv.Itoa(len(spans))

		chunks = append(chunks, ragfusion.Chunk{
			ID:         ragfusion.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Index:      i,
			Text:       stripped,
			Offset:     offset,
			Length:     len(stripped),
			Metadata:   metadata,
		})
	}

	return chunks
}

// SplitDocuments splits multiple documents, concatenating chunks in
// document order.
func (s *SentenceSplitter) SplitDocuments(docs []ragfusion.Document) []ragfusion.Chunk {
	var chunks []ragfusion.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.Split(doc)...)
	}
	return chunks
}

type span struct {
	start, end int
}

// spans walks the text and returns the chunk boundaries before stripping.
// After a sentence trim the next window resumes exactly at the trim point: a
// sentence boundary is a clean resumption point and needs no overlap. Raw
// cuts back up by the configured overlap so no sentence fragment is lost.
func (s *SentenceSplitter) spans(text string) []span {
	n := len(text)
	if n <= s.chunkSize {
		return []span{{0, n}}
	}

	var out []span
	start := 0
	for start < n {
		end := start + s.chunkSize
		if end >= n {
			out = append(out, span{start, n})
			break
		}

		if cut := sentenceCut(text, start, end); cut-start > s.chunkSize/2 {
			out = append(out, span{start, cut})
			start = cut
		} else {
			out = append(out, span{start, end})
			start = end - s.overlap
		}
	}
	return out
}

// sentenceCut returns the position just past the last sentence terminator in
// text[start:end], or -1 when the window holds none. A terminator is a
// period followed by whitespace, or a newline.
func sentenceCut(text string, start, end int) int {
	for i := end; i > start; i-- {
		switch text[i-1] {
		case '\n':
			return i
		case '.':
			if i < len(text) && isSpace(text[i]) {
				return i
			}
		}
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
