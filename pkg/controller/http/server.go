package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// Store is the store surface the HTTP controller consumes. Both the plain
// and the persistent store satisfy it.
type Store interface {
	Risks() []*model.Risk
	FilteredRisks() []*model.Risk
	Filters() model.Filters
	Categories() []string
	Stats() model.Stats

	AddRisk(ctx context.Context, input model.RiskInput) (*model.Risk, error)
	UpdateRisk(ctx context.Context, id types.RiskID, update model.RiskUpdate) (*model.Risk, error)
	DeleteRisk(ctx context.Context, id types.RiskID)
	SetFilters(ctx context.Context, update model.FiltersUpdate) model.Filters
	AddCategory(ctx context.Context, name string) ([]string, error)
	ExportCSV() string
	ImportCSV(ctx context.Context, payload string) (int, error)
	SeedDemoData(ctx context.Context) int
}

type Server struct {
	router *chi.Mux
	store  Store

	importBodyLimit int64
}

type Options func(*Server)

// WithImportBodyLimit caps the accepted CSV import body size in bytes
func WithImportBodyLimit(limit int64) Options {
	return func(s *Server) {
		s.importBodyLimit = limit
	}
}

func New(store Store, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:          r,
		store:           store,
		importBodyLimit: 10 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/risks", func(r chi.Router) {
			r.Get("/", s.listFilteredRisks)
			r.Get("/all", s.listAllRisks)
			r.Post("/", s.createRisk)
			r.Patch("/{id}", s.updateRisk)
			r.Delete("/{id}", s.deleteRisk)
		})
		r.Put("/filters", s.setFilters)
		r.Get("/stats", s.getStats)
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.Post("/", s.createCategory)
		})
		r.Get("/export", s.exportCSV)
		r.Post("/import", s.importCSV)
		r.Post("/demo", s.seedDemo)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data) //nolint:errcheck // header already committed
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
