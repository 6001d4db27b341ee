package api

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docview/internal/cache"
	"github.com/dgallion1/docview/internal/config"
	"github.com/dgallion1/docview/internal/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFS embed.FS

// Server is the HTTP front end of the viewer.
type Server struct {
	router  chi.Router
	listing *cache.Listing
	docs    *cache.DocumentCache
	pages   *render.Renderer
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(listing *cache.Listing, docs *cache.DocumentCache, pages *render.Renderer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		listing: listing,
		docs:    docs,
		pages:   pages,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	static, _ := fs.Sub(staticFS, "static")
	assets := http.FileServer(http.FS(static))
	r.Handle("/css/*", assets)
	r.Handle("/js/*", assets)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleHome)
	r.Get("/view/*", s.handleView)

	r.Route("/api", func(r chi.Router) {
		r.Get("/files", s.handleListFiles)
		r.Post("/files/refresh", s.handleRefreshFiles)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			jsonError(w, "not found", http.StatusNotFound)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
