package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/smallnest/ragfusion"
)

func newDocumentID() string {
	return uuid.NewString()
}

// TextLoader reads plain-text files into one document each. The document ID
// is the file's base name without extension, so re-loading the same file
// produces the same chunk IDs.
type TextLoader struct {
	paths    []string
	metadata map[string]string
}

// NewTextLoader creates a loader for the given file paths. The metadata map
// is copied onto every loaded document.
func NewTextLoader(paths []string, metadata map[string]string) *TextLoader {
	return &TextLoader{paths: paths, metadata: metadata}
}

var _ Loader = (*TextLoader)(nil)

// Load reads every file. A missing or unreadable file fails the whole load.
func (l *TextLoader) Load(ctx context.Context) ([]ragfusion.Document, error) {
	out := make([]ragfusion.Document, 0, len(l.paths))
	for _, path := range l.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		base := filepath.Base(path)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		if id == "" {
			id = newDocumentID()
		}

		metadata := map[string]string{"source": path}
		for k, v := range l.metadata {
			metadata[k] = v
		}

		out = append(out, ragfusion.Document{
			ID:       id,
			Text:     string(data),
			Metadata: metadata,
		})
	}
	return out, nil
}
