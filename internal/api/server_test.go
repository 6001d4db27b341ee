package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/docview/internal/cache"
	"github.com/dgallion1/docview/internal/config"
	"github.com/dgallion1/docview/internal/render"
	"github.com/dgallion1/docview/internal/scanner"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	writeDoc(t, root, "a.md", "# Alpha\n\nplain prose\n")
	writeDoc(t, root, "b/c.md", "intro\n\n```markmap\n# root\n- child\n```\n\noutro\n")
	writeDoc(t, root, "b/d.md", "---\ntype: markmap\ntitle: Delta Map\n---\n# delta\n- one\n")
	writeDoc(t, root, "b/skip.txt", "not listed")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{Port: "0", DocsDir: root, ListingTTL: time.Minute, DocumentCacheSize: 8, LogFormat: "text"}

	sc := scanner.New(".md", log)
	listing := cache.NewListing(func() []string { return sc.Scan(root) }, cfg.ListingTTL, log)
	docs, err := cache.NewDocumentCache(root, cfg.DocumentCacheSize)
	require.NoError(t, err)
	pages, err := render.New()
	require.NoError(t, err)

	return NewServer(listing, docs, pages, log, cfg), root
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func activeLinks(t *testing.T, body string) []string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)

	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href, class string
			for _, a := range n.Attr {
				switch a.Key {
				case "href":
					href = a.Val
				case "class":
					class = a.Val
				}
			}
			if strings.Contains(class, "active") {
				out = append(out, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func TestHome(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Found 3 markdown files")
	assert.Contains(t, body, `href="/view/b/c.md"`)
	assert.NotContains(t, body, "skip.txt")
	assert.Empty(t, activeLinks(t, body))
}

func TestView_Modes(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		target  string
		want    []string
		without []string
	}{
		{"/view/a.md", []string{`class="markdown-content"`, "<h1 id=\"alpha\">Alpha</h1>"}, []string{"markmap-view"}},
		{"/view/b/c.md", []string{"embedded-markmap", `id="markmap-1"`, "markdown-block"}, nil},
		{"/view/b/c.md?view=markdown", []string{"language-markmap"}, []string{"embedded-markmap"}},
		{"/view/b/d.md", []string{`<svg id="markmap">`, "<title>Delta Map - Markmap Viewer</title>"}, nil},
		{"/view/b/d.md?view=markdown", []string{"<h1 id=\"delta\">delta</h1>"}, []string{`<svg id="markmap">`}},
		{"/view/a.md?view=markmap", []string{`<svg id="markmap">`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
			for _, w := range tt.without {
				assert.NotContains(t, body, w)
			}
		})
	}
}

func TestView_MarksActiveFile(t *testing.T) {
	s, _ := newTestServer(t)
	for _, target := range []string{"/view/b/c.md", "/view/./b/c.md", "/view/b//c.md"} {
		rec := get(t, s, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, []string{"/view/b/c.md"}, activeLinks(t, rec.Body.String()), target)
	}
}

func TestView_NotFound(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{"/view/missing.md", "/view/a/../../etc/passwd", "/view/b"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "File Not Found", target)
		assert.Contains(t, rec.Body.String(), "failed to read file", target)
	}
}

func TestView_EscapedPath(t *testing.T) {
	s, root := newTestServer(t)
	writeDoc(t, root, "with space.md", "# spaced\n")

	rec := get(t, s, "/view/with%20space.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spaced")
}

func TestListFiles(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/files")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Files []string                   `json:"files"`
		Tree  map[string]json.RawMessage `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a.md", "b/c.md", "b/d.md"}, resp.Files)
	assert.Len(t, resp.Tree, 2)

	var a map[string]any
	require.NoError(t, json.Unmarshal(resp.Tree["a.md"], &a))
	assert.Equal(t, "file", a["type"])
	assert.Nil(t, a["children"])

	var b map[string]any
	require.NoError(t, json.Unmarshal(resp.Tree["b"], &b))
	assert.Equal(t, "directory", b["type"])
	assert.Len(t, b["children"], 2)
}

func TestRefreshFiles(t *testing.T) {
	s, root := newTestServer(t)
	get(t, s, "/api/files")
	writeDoc(t, root, "new/e.md", "# e")

	// Cached listing still within TTL.
	var before struct{ Files []string }
	require.NoError(t, json.Unmarshal(get(t, s, "/api/files").Body.Bytes(), &before))
	assert.Len(t, before.Files, 3)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/files/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var after struct{ Files []string }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Contains(t, after.Files, "new/e.md")
}

func TestStaticAssetsAndHealth(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{"/css/main.css", "/js/theme.js", "/js/sidebar.js"} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.NotEmpty(t, rec.Body.String(), target)
	}
	assert.Contains(t, get(t, s, "/css/main.css").Header().Get("Content-Type"), "text/css")

	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, s, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}
