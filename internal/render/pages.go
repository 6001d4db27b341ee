// Package render assembles the viewer's HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dgallion1/docview/internal/blocks"
	"github.com/dgallion1/docview/internal/document"
	"github.com/dgallion1/docview/internal/doctree"
	"github.com/dgallion1/docview/internal/markmap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "markdown", "markmap", "mixed", "error"}

// Renderer turns documents into complete HTML pages.
type Renderer struct {
	prose   *Prose
	mindmap *markmap.Transformer
	pages   map[string]*template.Template
}

// New parses the page templates.
func New() (*Renderer, error) {
	r := &Renderer{
		prose:   NewProse(),
		mindmap: markmap.NewTransformer(),
		pages:   make(map[string]*template.Template, len(pageNames)),
	}
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/sidebar.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

type mixedBlock struct {
	Index   int
	Markmap bool
	HTML    template.HTML
}

type indexedMap struct {
	Index int           `json:"index"`
	Data  *markmap.Node `json:"data"`
}

type page struct {
	Title     string
	FilePath  string
	Sidebar   Sidebar
	DocsRoot  string
	FileCount int
	Root      *markmap.Node

	HTML     template.HTML
	TOC      template.HTML
	Blocks   []mixedBlock
	Markmaps []indexedMap

	Heading string
	Message string
}

// Home writes the landing page.
func (r *Renderer) Home(w io.Writer, tree doctree.Tree, fileCount int, root string) error {
	return r.execute(w, "home", page{
		Sidebar:   BuildSidebar(tree, ""),
		FileCount: fileCount,
		DocsRoot:  root,
	})
}

// NotFound writes the error page shown when a document cannot be read.
func (r *Renderer) NotFound(w io.Writer, tree doctree.Tree, message string) error {
	return r.execute(w, "error", page{
		Title:   "Error",
		Sidebar: BuildSidebar(tree, ""),
		Heading: "File Not Found",
		Message: message,
	})
}

// Document writes doc using the given view.
func (r *Renderer) Document(w io.Writer, doc *document.Document, view document.View, tree doctree.Tree) error {
	p := page{
		Title:    doc.Title(),
		FilePath: doc.Path,
		Sidebar:  BuildSidebar(tree, doc.Path),
	}

	switch view {
	case document.ViewMarkmap:
		root, err := r.Markmap(doc)
		if err != nil {
			return err
		}
		p.Root = root
		return r.execute(w, "markmap", p)

	case document.ViewMixed:
		for i, blk := range doc.Blocks() {
			switch blk.Kind {
			case blocks.KindDiagram:
				root, err := r.mindmap.Transform(blk.Content)
				if err != nil {
					return err
				}
				markmap.ExpandLevel(root, expandLevel(doc))
				p.Blocks = append(p.Blocks, mixedBlock{Index: i, Markmap: true})
				p.Markmaps = append(p.Markmaps, indexedMap{Index: i, Data: root})
			case blocks.KindProse:
				html, err := r.prose.Render(blk.Content)
				if err != nil {
					return err
				}
				p.Blocks = append(p.Blocks, mixedBlock{Index: i, HTML: html})
			}
		}
		return r.execute(w, "mixed", p)

	case document.ViewMarkdown:
		html, toc, err := r.prose.RenderWithTOC(doc.Body)
		if err != nil {
			return err
		}
		p.HTML, p.TOC = html, toc
		return r.execute(w, "markdown", p)
	}
	return fmt.Errorf("unknown view %q", view)
}

// Markmap transforms the whole body of doc into a mind-map tree.
func (r *Renderer) Markmap(doc *document.Document) (*markmap.Node, error) {
	root, err := r.mindmap.Transform(doc.Body)
	if err != nil {
		return nil, err
	}
	markmap.ExpandLevel(root, expandLevel(doc))
	return root, nil
}

// expandLevel reads markmap.initialExpandLevel from front-matter.
func expandLevel(doc *document.Document) int {
	opts, ok := doc.Frontmatter["markmap"].(map[string]any)
	if !ok {
		return 0
	}
	level, _ := opts["initialExpandLevel"].(int)
	return level
}

// execute buffers the page; nothing reaches w if the template fails.
func (r *Renderer) execute(w io.Writer, name string, p page) error {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("execute %s template: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
