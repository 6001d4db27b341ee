package cache

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docview/internal/document"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScanner struct {
	mu    sync.Mutex
	calls int
	files []string
}

func (f *fakeScanner) scan() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]string(nil), f.files...)
}

func TestSnapshot_Fresh(t *testing.T) {
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	snap := NewSnapshot([]string{"a.md"}, at)

	assert.True(t, snap.Fresh(at.Add(59*time.Second), time.Minute))
	assert.False(t, snap.Fresh(at.Add(time.Minute), time.Minute))

	empty := NewSnapshot(nil, at)
	assert.False(t, empty.Fresh(at, time.Minute))

	var none *Snapshot
	assert.False(t, none.Fresh(at, time.Minute))
}

func TestListing_CachesWithinTTL(t *testing.T) {
	fs := &fakeScanner{files: []string{"a.md", "b/c.md"}}
	l := NewListing(fs.scan, time.Minute, quietLogger())

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	first := l.Get()
	assert.Equal(t, []string{"a.md", "b/c.md"}, first.Files)
	require.NotNil(t, first.Tree.Find("b/c.md"))

	clock = clock.Add(30 * time.Second)
	fs.files = []string{"a.md"}
	second := l.Get()
	assert.Same(t, first, second)
	assert.Equal(t, 1, fs.calls)

	clock = clock.Add(31 * time.Second)
	third := l.Get()
	assert.Equal(t, []string{"a.md"}, third.Files)
	assert.Equal(t, 2, fs.calls)

	// The old snapshot is untouched.
	assert.Equal(t, []string{"a.md", "b/c.md"}, first.Files)
}

func TestListing_EmptyRootRescans(t *testing.T) {
	fs := &fakeScanner{}
	l := NewListing(fs.scan, time.Hour, quietLogger())

	l.Get()
	l.Get()
	assert.Equal(t, 2, fs.calls)
}

func TestListing_Refresh(t *testing.T) {
	fs := &fakeScanner{files: []string{"a.md"}}
	l := NewListing(fs.scan, time.Hour, quietLogger())

	l.Get()
	fs.files = []string{"a.md", "new.md"}
	snap := l.Refresh()
	assert.Len(t, snap.Files, 2)
	assert.Same(t, snap, l.Get())
}

func TestListing_ConcurrentReaders(t *testing.T) {
	fs := &fakeScanner{files: []string{"a.md"}}
	l := NewListing(fs.scan, time.Hour, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []string{"a.md"}, l.Get().Files)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fs.calls)
}

func TestDocumentCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: One\n---\nbody"), 0o644))

	c, err := NewDocumentCache(root, 4)
	require.NoError(t, err)

	first, err := c.Get("doc.md")
	require.NoError(t, err)
	assert.Equal(t, "One", first.Title())

	again, err := c.Get("doc.md")
	require.NoError(t, err)
	assert.Same(t, first, again)

	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Two, longer\n---\nbody"), 0o644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	updated, err := c.Get("doc.md")
	require.NoError(t, err)
	assert.Equal(t, "Two, longer", updated.Title())
	assert.Equal(t, 1, c.Len())

	require.NoError(t, os.Remove(path))
	_, err = c.Get("doc.md")
	assert.True(t, errors.Is(err, document.ErrNotFound))
	assert.Equal(t, 0, c.Len())
}

func TestDocumentCache_InvalidSize(t *testing.T) {
	_, err := NewDocumentCache(t.TempDir(), 0)
	assert.Error(t, err)
}

func TestDocumentCache_EquivalentPathsShareEntry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "c.md"), []byte("# c"), 0o644))

	c, err := NewDocumentCache(root, 4)
	require.NoError(t, err)

	first, err := c.Get("b/c.md")
	require.NoError(t, err)
	for _, rel := range []string{"./b/c.md", "b//c.md", "b/./c.md"} {
		doc, err := c.Get(rel)
		require.NoError(t, err, rel)
		assert.Same(t, first, doc, rel)
	}
	assert.Equal(t, 1, c.Len())

	_, err = c.Get("../c.md")
	assert.True(t, errors.Is(err, document.ErrOutsideRoot))
}
