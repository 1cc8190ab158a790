// Package loader turns raw inputs into Documents ready for chunking.
// Loaders assign a stable document ID when the input does not carry one
// and attach source metadata so it survives into every chunk.
package loader

import (
	"context"

	"github.com/smallnest/ragfusion"
)

// Loader produces documents from some input source.
type Loader interface {
	Load(ctx context.Context) ([]ragfusion.Document, error)
}

// StaticLoader serves a fixed set of in-memory documents. Documents without
// an ID get a generated one at load time.
type StaticLoader struct {
	documents []ragfusion.Document
}

// NewStaticLoader creates a loader over the given documents.
func NewStaticLoader(documents []ragfusion.Document) *StaticLoader {
	return &StaticLoader{documents: documents}
}

var _ Loader = (*StaticLoader)(nil)

// Load returns the documents, filling in missing IDs.
func (l *StaticLoader) Load(ctx context.Context) ([]ragfusion.Document, error) {
	out := make([]ragfusion.Document, len(l.documents))
	for i, doc := range l.documents {
		if doc.ID == "" {
			doc.ID = newDocumentID()
		}
		out[i] = doc
	}
	return out, nil
}
