package loader

import (
	"context"
	stdhtml "html"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/ragfusion"
)

// MarkdownLoader converts Markdown into plain text by rendering it to HTML
// and stripping every tag, which discards formatting but keeps the prose
// and its line structure.
type MarkdownLoader struct {
	source   []byte
	id       string
	metadata map[string]string
}

// NewMarkdownLoader creates a loader over Markdown source. An empty id gets
// a generated one at load time.
func NewMarkdownLoader(source []byte, id string, metadata map[string]string) *MarkdownLoader {
	return &MarkdownLoader{source: source, id: id, metadata: metadata}
}

var _ Loader = (*MarkdownLoader)(nil)

// Load parses the Markdown and returns a single plain-text document.
func (l *MarkdownLoader) Load(ctx context.Context) ([]ragfusion.Document, error) {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(l.source)

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.Render(doc, renderer)

	stripped := bluemonday.StrictPolicy().SanitizeBytes(rendered)
	text := normalizeWhitespace(stdhtml.UnescapeString(string(stripped)))

	id := l.id
	if id == "" {
		id = newDocumentID()
	}

	metadata := map[string]string{"format": "markdown"}
	for k, v := range l.metadata {
		metadata[k] = v
	}

	return []ragfusion.Document{{ID: id, Text: text, Metadata: metadata}}, nil
}
