package content

import (
	"bytes"
	"fmt"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/domain/services/references"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts post markdown to HTML and collects the hrefs it links to
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a renderer with GitHub flavored markdown. Raw HTML in
// posts is passed through since post content is trusted.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render renders markdown source
func (r *Renderer) Render(source []byte) (*ports.Rendered, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	hrefs, err := references.ExtractHrefs(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to extract links: %w", err)
	}

	return &ports.Rendered{HTML: buf.String(), Hrefs: hrefs}, nil
}
