package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgallion1/docview/internal/cache"
	"github.com/dgallion1/docview/internal/doctree"
)

type filesResponse struct {
	Files     []string     `json:"files"`
	Tree      doctree.Tree `json:"tree"`
	ScannedAt string       `json:"scanned_at"`
}

// handleListFiles returns the cached listing as JSON.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	writeListing(w, s.listing.Get())
}

// handleRefreshFiles rescans the document root immediately.
func (s *Server) handleRefreshFiles(w http.ResponseWriter, r *http.Request) {
	s.docs.Purge()
	writeListing(w, s.listing.Refresh())
}

func writeListing(w http.ResponseWriter, snap *cache.Snapshot) {
	files := snap.Files
	if files == nil {
		files = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(filesResponse{
		Files:     files,
		Tree:      snap.Tree,
		ScannedAt: snap.ScannedAt.UTC().Format(time.RFC3339),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
