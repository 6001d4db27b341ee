package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgallion1/docview/internal/document"
)

// DocumentCache keeps recently parsed documents, keyed by cleaned relative
// path.
// An entry is reused only while the file's size and mtime are unchanged.
type DocumentCache struct {
	root    string
	entries *lru.Cache[string, *document.Document]
}

// NewDocumentCache creates a cache of up to size documents under root.
func NewDocumentCache(root string, size int) (*DocumentCache, error) {
	entries, err := lru.New[string, *document.Document](size)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &DocumentCache{root: root, entries: entries}, nil
}

// Get returns the parsed document at rel, reading it from disk when the
// cached copy is missing or out of date. Read failures are never cached.
func (c *DocumentCache) Get(rel string) (*document.Document, error) {
	key, err := document.Clean(rel)
	if err != nil {
		return nil, &document.ReadError{Path: rel, Err: err}
	}

	info, err := document.Stat(c.root, key)
	if err != nil {
		c.entries.Remove(key)
		return nil, err
	}

	if doc, ok := c.entries.Get(key); ok && sameFile(doc, info.Size(), info.ModTime()) {
		return doc, nil
	}

	doc, err := document.Read(c.root, key)
	if err != nil {
		c.entries.Remove(key)
		return nil, err
	}
	c.entries.Add(key, doc)
	return doc, nil
}

// Len reports the number of cached documents.
func (c *DocumentCache) Len() int { return c.entries.Len() }

// Purge drops every cached document.
func (c *DocumentCache) Purge() { c.entries.Purge() }

func sameFile(doc *document.Document, size int64, mod time.Time) bool {
	return doc.Size == size && doc.ModTime.Equal(mod)
}
