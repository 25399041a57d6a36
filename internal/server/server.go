// Package server exposes the completion engine over HTTP. Stateless endpoints
// answer one-shot queries; editor sessions live behind a websocket and are fed
// one event at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/internal/preview"
)

const (
	defaultCatalogTTL  = time.Minute
	defaultSessionIdle = 30 * time.Minute
	maxBodyBytes       = 1 << 20
)

// Options configures a Server.
type Options struct {
	Logger logr.Logger
	// SessionIdle closes sessions without events for this long. Zero means 30m.
	SessionIdle time.Duration
	// CatalogTTL controls how long the merged catalog is reused by the
	// stateless endpoints. Zero means one minute.
	CatalogTTL time.Duration
	// SampleData is the document used by /api/preview when a request has none.
	SampleData any
	// AllowedOrigins lists browser origins, besides the server's own host,
	// that may open session websockets.
	AllowedOrigins []string
}

// Server holds the engine, the session registry, and the catalog cache.
type Server struct {
	engine   *completion.Engine
	log      logr.Logger
	sessions *Registry
	sample   any

	allowedOrigins []string
	upgrader       websocket.Upgrader

	catalogTTL time.Duration
	mu         sync.Mutex
	catalog    *completion.Catalog
	fetchedAt  time.Time
	renderers  map[string]*preview.Renderer // by catalog version
	now        func() time.Time
}

// New creates a server for engine.
func New(engine *completion.Engine, opts Options) *Server {
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = defaultSessionIdle
	}
	if opts.CatalogTTL <= 0 {
		opts.CatalogTTL = defaultCatalogTTL
	}
	s := &Server{
		engine:         engine,
		log:            opts.Logger,
		sessions:       NewRegistry(opts.SessionIdle),
		sample:         opts.SampleData,
		allowedOrigins: opts.AllowedOrigins,
		catalogTTL:     opts.CatalogTTL,
		renderers:      make(map[string]*preview.Renderer),
		now:            time.Now,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Post("/complete", s.handleComplete)
		r.Post("/insert", s.handleInsert)
		r.Post("/preview", s.handlePreview)

		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleCreateSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		r.Get("/sessions/{id}/ws", s.handleWS)
	})
	return r
}

// Serve listens on addr until ctx is cancelled, reaping idle sessions in the
// background.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		s.sessions.reapLoop(gctx, s.log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.sessions.CloseAll()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// currentCatalog returns the cached merged catalog, refetching it when the
// cache is older than the TTL.
func (s *Server) currentCatalog(ctx context.Context) *completion.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog != nil && s.now().Sub(s.fetchedAt) < s.catalogTTL {
		return s.catalog
	}
	s.catalog = s.engine.Catalog(ctx)
	s.fetchedAt = s.now()
	return s.catalog
}

func (s *Server) renderer(ctx context.Context) (*preview.Renderer, error) {
	cat := s.currentCatalog(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.renderers[cat.Version()]; ok {
		return r, nil
	}
	r, err := preview.New(cat)
	if err != nil {
		return nil, err
	}
	// Only the latest catalog's renderer is worth keeping.
	clear(s.renderers)
	s.renderers[cat.Version()] = r
	return r, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
