package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gateconsole/internal/audit"
	"gateconsole/internal/engine"
	"gateconsole/internal/logger"
	"gateconsole/internal/monitor"
	"gateconsole/internal/settings"
	"gateconsole/internal/taxonomy"
)

const recentLimit = 8

// Options wires the console to its collaborators.
type Options struct {
	Client   *engine.Client
	Settings *settings.Manager
	// Monitor is optional. Without it, health is checked on demand.
	Monitor        *monitor.Monitor
	Audit          audit.Recorder
	Gatherer       prometheus.Gatherer
	MaxUploadBytes int64
	CORSOrigins    []string
}

// Server is the console HTTP front end.
type Server struct {
	client         *engine.Client
	settings       *settings.Manager
	monitor        *monitor.Monitor
	audit          audit.Recorder
	gatherer       prometheus.Gatherer
	maxUploadBytes int64
	corsOrigins    []string
	mapper         *taxonomy.Mapper
	pages          map[string]*template.Template
	now            func() time.Time
	router         chi.Router
}

// New parses the page templates and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, errors.New("engine client is required")
	}
	if opts.Settings == nil {
		return nil, errors.New("settings manager is required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		client:         opts.Client,
		settings:       opts.Settings,
		monitor:        opts.Monitor,
		audit:          opts.Audit,
		gatherer:       opts.Gatherer,
		maxUploadBytes: opts.MaxUploadBytes,
		corsOrigins:    opts.CORSOrigins,
		mapper:         taxonomy.NewMapper(taxonomy.MapperOptions{}),
		pages:          pages,
		now:            time.Now,
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = 256 << 20
	}
	s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(s.handleNotFound)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/", s.handleDashboard)

	r.Get("/records", s.handleRecords)
	r.Post("/records/{sha256}/rescan", s.handleRescan)
	r.Post("/records/{sha256}/delete", s.handleDelete)

	r.Get("/file/{sha256}", s.handleFile)
	r.Post("/file/{sha256}/edit", s.handleFileEdit)

	r.Get("/scanner", s.handleScanner)
	r.Post("/scanner", s.handleScanUpload)

	r.Get("/taxonomy", s.handleTaxonomy)
	r.Get("/taxonomy/graph", s.handleTaxonomyGraph)
	r.Post("/taxonomy/families", s.handleFamilyCreate)
	r.Post("/taxonomy/families/{id}", s.handleFamilyUpdate)
	r.Post("/taxonomy/tags", s.handleTagCreate)
	r.Post("/taxonomy/tags/{id}", s.handleTagUpdate)

	r.Get("/yara", s.handleYara)
	r.Post("/yara/load", s.handleYaraLoad)
	r.Get("/yara/compiled", s.handleYaraCompiled)
	r.Get("/yara/rule/{identifier}", s.handleYaraRule)
	r.Post("/yara/rule/{identifier}/enable", s.handleYaraEnable)
	r.Post("/yara/rule/{identifier}/disable", s.handleYaraDisable)

	r.Get("/plugins", s.handlePlugins)

	r.Get("/status", s.handleStatus)
	r.Post("/status/refresh", s.handleStatusRefresh)

	r.Get("/settings", s.handleSettings)
	r.Post("/settings", s.handleSettingsSave)
	r.Post("/settings/reset", s.handleSettingsReset)
	r.Post("/settings/test", s.handleSettingsTest)

	r.Route("/api", func(r chi.Router) {
		// Cross-origin access is off unless origins are listed explicitly.
		if len(s.corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.corsOrigins,
				AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", engine.RequestIDHeader},
				ExposedHeaders: []string{engine.RequestIDHeader},
				MaxAge:         300,
			}))
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
		r.Get("/records", s.apiRecords)
		r.Get("/records/{sha256}", s.apiRecord)
		r.Get("/settings", s.apiSettings)
		r.Put("/settings", s.apiSettingsUpdate)
		r.Get("/engine/health", s.apiEngineHealth)
		r.Get("/taxonomy/graph", s.apiTaxonomyGraph)
	})

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Console listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("console server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Infof("Shutting down console")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("console shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "notfound", "Not found", nil, nil)
}

// engineHealth returns the cached snapshot, checking once when none exists.
func (s *Server) engineHealth(ctx context.Context) monitor.Snapshot {
	if s.monitor != nil {
		if snap := s.monitor.Last(); !snap.CheckedAt.IsZero() {
			return snap
		}
		return s.monitor.Refresh(ctx)
	}
	return monitor.New(s.client, 0, nil).Refresh(ctx)
}

// checkEngine always performs a live check.
func (s *Server) checkEngine(ctx context.Context) monitor.Snapshot {
	if s.monitor != nil {
		return s.monitor.Refresh(ctx)
	}
	return monitor.New(s.client, 0, nil).Refresh(ctx)
}
