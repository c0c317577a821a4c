// Package web serves the layout engine over a JSON HTTP API.
//
// Every browser session (identified by a cookie) owns one board store and
// one interaction engine. The page forwards pointer events and renders the
// layout the API returns; all geometry decisions happen server side.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/config"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/grid"
	"github.com/vovakirdan/gridfolio/internal/interact"
	"github.com/vovakirdan/gridfolio/internal/storage"
)

// sessionPrefix namespaces per-session layouts in the backend.
const sessionPrefix = "session:"

// sweepInterval is how often idle sessions are dropped.
const sweepInterval = time.Minute

// Server is the HTTP front-end.
type Server struct {
	cfg        config.Config
	backend    storage.Backend
	logger     *log.Logger
	engineOpts []interact.Option
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	loads    singleflight.Group
}

// session is the board and engine of one browser session.
type session struct {
	id       string
	store    *board.Store
	engine   *interact.Engine
	lastSeen time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngineOptions passes options to every session's interaction engine.
func WithEngineOptions(opts ...interact.Option) Option {
	return func(s *Server) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithClock replaces the wall clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server that persists session layouts in backend.
// A nil backend keeps layouts in memory.
func New(cfg config.Config, backend storage.Backend, opts ...Option) *Server {
	if backend == nil {
		backend = storage.NewMemoryStore()
	}
	s := &Server{
		cfg:     cfg,
		backend: backend,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "gridfolio-http",
		}),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/kinds", s.handleKinds)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)

			r.Get("/layout", s.handleLayout)
			r.Put("/layout", s.handleImport)
			r.Get("/layout/export", s.handleExport)
			r.Put("/viewport", s.handleViewport)

			r.Post("/pointer/down", s.handlePointerDown)
			r.Post("/pointer/move", s.handlePointerMove)
			r.Post("/pointer/up", s.handlePointerUp)
			r.Post("/pointer/cancel", s.handlePointerCancel)

			r.Post("/widgets", s.handleAddWidget)
			r.Route("/widgets/{id}", func(r chi.Router) {
				r.Delete("/", s.handleRemoveWidget)
				r.Get("/click", s.handleClick)
				r.Put("/settings", s.handleSettings)
				r.Post("/{action}", s.handleWidgetAction)
			})

			r.Post("/autosort", s.handleAutosort)
			r.Post("/reset", s.handleReset)
		})
	})

	return r
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("dropped idle sessions", "count", n)
			}
		case <-ctx.Done():
			s.logger.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := srv.Shutdown(shutdownCtx)
			s.Close()
			return err
		}
	}
}

// Sweep drops sessions idle for longer than the configured idle timeout
// and returns how many were dropped. Their layouts stay in the backend.
func (s *Server) Sweep() int {
	timeout := s.cfg.Server.IdleTimeout
	if timeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-timeout)

	s.mu.Lock()
	var idle []*session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		sess.engine.Close()
		sess.store.Wait()
	}
	return len(idle)
}

// Close stops every session and waits for pending saves.
func (s *Server) Close() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.engine.Close()
		sess.store.Wait()
	}
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// session returns the live session with the given id, restoring or
// creating it on first use. Concurrent first requests for one id share a
// single load, and the backend is never read while s.mu is held.
func (s *Server) session(ctx context.Context, id string) (*session, error) {
	if sess := s.lookup(id); sess != nil {
		return sess, nil
	}

	v, err, _ := s.loads.Do(id, func() (any, error) {
		if sess := s.lookup(id); sess != nil {
			return sess, nil
		}

		logger := s.logger.With("session", shortID(id))
		store := board.New(
			grid.New(s.cfg.Grid, core.DefaultViewport()),
			board.WithPersister(s.backend, sessionPrefix+id),
			board.WithSeedLayout(s.cfg.Storage.Layout),
			board.WithSearchRadius(s.cfg.Interaction.SearchRadius),
			board.WithLogger(logger),
		)
		if err := store.Load(ctx); err != nil {
			return nil, err
		}

		opts := append([]interact.Option{interact.WithLogger(logger)}, s.engineOpts...)
		sess := &session{
			id:     id,
			store:  store,
			engine: interact.New(store, s.cfg.Interaction, opts...),
		}

		s.mu.Lock()
		sess.lastSeen = s.now()
		s.sessions[id] = sess
		s.mu.Unlock()

		logger.Info("session started", "widgets", len(store.Snapshot()))
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*session), nil
}

// lookup returns the live session with the given id and marks it as seen.
func (s *Server) lookup(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	sess.lastSeen = s.now()
	return sess
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// requestLogger logs each request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
