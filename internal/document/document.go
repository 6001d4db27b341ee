package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docview/internal/blocks"
	"github.com/dgallion1/docview/internal/frontmatter"
)

// Kind is the rendering intent declared by a document's front-matter.
type Kind string

const (
	KindDiagram Kind = "diagram"
	KindProse   Kind = "prose" // prose or mixed; the default
)

// View is a page layout the HTTP layer can render.
type View string

const (
	ViewMarkmap  View = "markmap"
	ViewMarkdown View = "markdown"
	ViewMixed    View = "mixed"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrOutsideRoot = errors.New("path escapes document root")
	ErrNotFile     = errors.New("not a regular file")
)

// ReadError reports a failed single-document read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Document is a parsed markdown file.
type Document struct {
	Path        string // Relative, slash-separated
	Frontmatter frontmatter.Metadata
	Body        string
	Type        string // Raw `type` value; empty when unset
	Kind        Kind
	ModTime     time.Time
	Size        int64
}

// Parse builds a Document from raw text.
func Parse(rel, text string) *Document {
	meta, body := frontmatter.Parse(text)
	typ := meta.String("type")
	kind := KindProse
	if typ == string(ViewMarkmap) {
		kind = KindDiagram
	}
	return &Document{
		Path:        rel,
		Frontmatter: meta,
		Body:        body,
		Type:        typ,
		Kind:        kind,
	}
}

// Title returns the front-matter title, or the file name without extension.
func (d *Document) Title() string {
	if t := d.Frontmatter.String("title"); t != "" {
		return t
	}
	return strings.TrimSuffix(path.Base(d.Path), ".md")
}

// HasDiagramBlocks reports whether the body embeds mind-map fences.
func (d *Document) HasDiagramBlocks() bool {
	return blocks.HasDiagramBlocks(d.Body)
}

// Blocks splits the body into prose and mind-map blocks.
func (d *Document) Blocks() []blocks.Block {
	return blocks.Extract(d.Body)
}

// ResolveView picks the page layout. A caller override of "markmap" or
// "markdown" wins; otherwise the front-matter type decides, and when that is
// unset or unrecognised the body's embedded blocks do.
func (d *Document) ResolveView(override string) View {
	choice := d.Type
	if override == string(ViewMarkmap) || override == string(ViewMarkdown) {
		choice = override
	}
	switch View(choice) {
	case ViewMarkmap:
		return ViewMarkmap
	case ViewMarkdown:
		return ViewMarkdown
	}
	if d.HasDiagramBlocks() {
		return ViewMixed
	}
	return ViewMarkdown
}

// Clean normalizes a relative document path to its slash-separated canonical
// form, so "./b//c.md" and "b/./c.md" both become "b/c.md".
func Clean(rel string) (string, error) {
	slash := filepath.ToSlash(rel)
	if strings.ContainsRune(slash, 0) {
		return "", ErrNotFile
	}
	for _, seg := range strings.Split(slash, "/") {
		if seg == ".." {
			return "", ErrOutsideRoot
		}
	}
	clean := path.Clean("/" + slash)
	if clean == "/" {
		return "", ErrNotFile
	}
	return clean[1:], nil
}

// Resolve maps a slash-separated relative path onto root, refusing paths
// that would leave it.
func Resolve(root, rel string) (string, error) {
	clean, err := Clean(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

// Stat returns file info for rel under root.
func Stat(root, rel string) (fs.FileInfo, error) {
	full, err := Resolve(root, rel)
	if err != nil {
		return nil, &ReadError{Path: rel, Err: err}
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, &ReadError{Path: rel, Err: classify(err)}
	}
	if !info.Mode().IsRegular() {
		return nil, &ReadError{Path: rel, Err: ErrNotFile}
	}
	return info, nil
}

// Read loads and parses rel under root.
func Read(root, rel string) (*Document, error) {
	info, err := Stat(root, rel)
	if err != nil {
		return nil, err
	}
	clean, _ := Clean(rel)
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(clean)))
	if err != nil {
		return nil, &ReadError{Path: rel, Err: classify(err)}
	}

	doc := Parse(clean, string(data))
	doc.ModTime = info.ModTime()
	doc.Size = info.Size()
	return doc, nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
