// Package api serves report generation and the report archive over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medsai/report-engine/internal/archive"
	"github.com/medsai/report-engine/pkg/reporting"
)

const defaultMaxBodyBytes = 2 << 20

// Archive is the subset of the report archive the API needs.
type Archive interface {
	Save(ctx context.Context, e *archive.Entry) (string, error)
	Get(ctx context.Context, id string) (*archive.Entry, error)
	List(ctx context.Context, limit int) ([]archive.Entry, error)
	Count(ctx context.Context) (int, error)
}

// Validator re-reads an encoded PDF and returns its page count.
type Validator func(data []byte) (int, error)

// Options configures a Server.
type Options struct {
	Engine         reporting.Engine
	Archive        Archive   // nil disables archiving
	Validator      Validator // nil skips output validation
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	engine       reporting.Engine
	archive      Archive
	validate     Validator
	maxBodyBytes int64
	origins      []string
}

// NewServer creates and configures the HTTP server.
func NewServer(opts Options) *Server {
	s := &Server{
		engine:       opts.Engine,
		archive:      opts.Archive,
		validate:     opts.Validator,
		maxBodyBytes: opts.MaxBodyBytes,
		origins:      opts.AllowedOrigins,
	}
	if s.engine == nil {
		s.engine = reporting.NewReportEngine()
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBodyBytes
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestContext)
	r.Use(CORS(s.origins))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/reports", func(r chi.Router) {
		r.Post("/", s.handleGenerateReport)
		r.Get("/", s.handleListReports)
		r.Get("/{reportID}", s.handleGetReport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, http.StatusNotFound, "not_found", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
