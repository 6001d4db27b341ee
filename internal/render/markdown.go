package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// minTOCItems is the smallest heading count that earns a table of contents.
const minTOCItems = 3

// Prose renders markdown to HTML.
type Prose struct {
	md goldmark.Markdown
}

// NewProse creates a renderer with GFM, typographic punctuation, heading IDs
// and raw HTML passthrough.
func NewProse() *Prose {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Prose{md: md}
}

// Render converts src to HTML.
func (p *Prose) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// RenderWithTOC converts src to HTML and also returns a nested list of links
// to its H1-H3 headings. The TOC is empty for documents with few headings.
func (p *Prose) RenderWithTOC(src string) (body, contents template.HTML, err error) {
	source := []byte(src)
	doc := p.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", "", fmt.Errorf("render markdown: %w", err)
	}
	body = template.HTML(buf.String())

	tree, err := toc.Inspect(doc, source, toc.MinDepth(1), toc.MaxDepth(3), toc.Compact(true))
	if err != nil {
		return "", "", fmt.Errorf("inspect TOC: %w", err)
	}
	if countItems(tree.Items) < minTOCItems {
		return body, "", nil
	}
	list := toc.RenderList(tree)
	if list == nil {
		return body, "", nil
	}
	buf.Reset()
	if err := p.md.Renderer().Render(&buf, source, list); err != nil {
		return "", "", fmt.Errorf("render TOC: %w", err)
	}
	return body, template.HTML(buf.String()), nil
}

func countItems(items toc.Items) int {
	n := 0
	for _, it := range items {
		n++
		n += countItems(it.Items)
	}
	return n
}
