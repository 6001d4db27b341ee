package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/docview/internal/doctree"
)

// Snapshot is an immutable view of the document root at one point in time.
type Snapshot struct {
	Files     []string
	Tree      doctree.Tree
	ScannedAt time.Time
}

// NewSnapshot builds the tree for files.
func NewSnapshot(files []string, at time.Time) *Snapshot {
	return &Snapshot{Files: files, Tree: doctree.Build(files), ScannedAt: at}
}

// Fresh reports whether s can still be served at now. A snapshot with no
// files is never fresh, so an empty root is rescanned on every request.
func (s *Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	if s == nil || len(s.Files) == 0 {
		return false
	}
	return now.Sub(s.ScannedAt) < ttl
}

// ScanFunc lists the documents under the viewer's root.
type ScanFunc func() []string

// Listing holds the current Snapshot and replaces it wholesale when stale.
// Readers keep whatever snapshot they loaded; it is never mutated.
type Listing struct {
	scan ScanFunc
	ttl  time.Duration
	now  func() time.Time
	log  *slog.Logger

	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // serializes rescans
	loaded  bool
}

// NewListing creates a Listing that rescans with scan once ttl has passed.
func NewListing(scan ScanFunc, ttl time.Duration, log *slog.Logger) *Listing {
	if log == nil {
		log = slog.Default()
	}
	l := &Listing{scan: scan, ttl: ttl, now: time.Now, log: log}
	l.current.Store(&Snapshot{Tree: doctree.Tree{}})
	return l
}

// Get returns a snapshot no older than the TTL, rescanning if needed.
func (l *Listing) Get() *Snapshot {
	snap := l.current.Load()
	if snap.Fresh(l.now(), l.ttl) {
		return snap
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another request may have refreshed while we waited.
	snap = l.current.Load()
	now := l.now()
	if snap.Fresh(now, l.ttl) {
		return snap
	}
	return l.refresh(now)
}

// Refresh rescans unconditionally.
func (l *Listing) Refresh() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refresh(l.now())
}

func (l *Listing) refresh(now time.Time) *Snapshot {
	start := time.Now()
	files := l.scan()
	next := NewSnapshot(files, now)
	l.current.Store(next)

	level := slog.LevelDebug
	if !l.loaded {
		level = slog.LevelInfo
		l.loaded = true
	}
	l.log.Log(context.Background(), level, "document listing refreshed",
		"files", len(files),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return next
}
