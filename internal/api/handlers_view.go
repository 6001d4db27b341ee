package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/dgallion1/docview/internal/document"
	"github.com/go-chi/chi/v5"
)

// handleHome renders the landing page with the sidebar.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.listing.Get()

	var buf bytes.Buffer
	if err := s.pages.Home(&buf, snap.Tree, len(snap.Files), s.cfg.DocsDir); err != nil {
		s.log.Error("render home page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// handleView renders one document. The view query parameter forces
// "markmap" or "markdown" regardless of front-matter.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	snap := s.listing.Get()
	rel := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		// chi matched against the escaped path.
		if unescaped, err := url.PathUnescape(rel); err == nil {
			rel = unescaped
		}
	}

	doc, err := s.docs.Get(rel)
	if err != nil {
		var readErr *document.ReadError
		if !errors.As(err, &readErr) {
			s.log.Error("load document", "path", rel, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		s.log.Warn("document not viewable", "path", rel, "error", err)
		var buf bytes.Buffer
		if err := s.pages.NotFound(&buf, snap.Tree, err.Error()); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeHTML(w, http.StatusNotFound, buf.Bytes())
		return
	}

	view := doc.ResolveView(r.URL.Query().Get("view"))

	var buf bytes.Buffer
	if err := s.pages.Document(&buf, doc, view, snap.Tree); err != nil {
		s.log.Error("render document", "path", rel, "view", view, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(body)
}
