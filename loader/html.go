package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smallnest/ragfusion"
)

// HTMLLoader extracts visible text from HTML input. Scripts, styles and
// other non-content elements are dropped before text extraction.
type HTMLLoader struct {
	reader   io.Reader
	id       string
	metadata map[string]string
}

// NewHTMLLoader creates a loader over an HTML stream. An empty id gets a
// generated one at load time.
func NewHTMLLoader(reader io.Reader, id string, metadata map[string]string) *HTMLLoader {
	return &HTMLLoader{reader: reader, id: id, metadata: metadata}
}

var _ Loader = (*HTMLLoader)(nil)

// Load parses the HTML and returns a single document with its visible text.
func (l *HTMLLoader) Load(ctx context.Context) ([]ragfusion.Document, error) {
	doc, err := goquery.NewDocumentFromReader(l.reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	text := normalizeWhitespace(doc.Find("body").Text())
	if text == "" {
		// Fragment without a body element.
		text = normalizeWhitespace(doc.Text())
	}

	id := l.id
	if id == "" {
		id = newDocumentID()
	}

	metadata := map[string]string{"format": "html"}
	for k, v := range l.metadata {
		metadata[k] = v
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		metadata["title"] = title
	}

	return []ragfusion.Document{{ID: id, Text: text, Metadata: metadata}}, nil
}

// normalizeWhitespace collapses runs of whitespace into single spaces while
// keeping line breaks, so sentence boundaries survive for the splitter.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
