// Package web serves the characters browser over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/character-browser/pkg/cache"
	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/Sternrassler/character-browser/pkg/metrics"
	"github.com/Sternrassler/character-browser/pkg/pagination"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// PageCache is the query cache as used by the HTTP handlers.
type PageCache interface {
	pagination.QueryCache
	Fetch(ctx context.Context, key cache.QueryKey) (*client.CharacterPage, error)
	Refetch(key cache.QueryKey)
}

// Pinger checks a backing dependency for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the handler configuration.
type Config struct {
	// ContentTimeout bounds how long a content fragment waits for its page.
	ContentTimeout time.Duration

	// Ready is pinged by /ready. Nil means always ready.
	Ready Pinger
}

// DefaultConfig returns the default handler configuration.
func DefaultConfig() Config {
	return Config{ContentTimeout: 20 * time.Second}
}

// Server holds the HTTP handlers.
type Server struct {
	cache  PageCache
	config Config
	logger zerolog.Logger
}

// NewServer creates the HTTP handlers over pageCache.
func NewServer(pageCache PageCache, cfg Config) *Server {
	if pageCache == nil {
		panic("page cache cannot be nil")
	}
	if cfg.ContentTimeout <= 0 {
		cfg.ContentTimeout = DefaultConfig().ContentTimeout
	}
	return &Server{
		cache:  pageCache,
		config: cfg,
		logger: logging.NewLogger("web"),
	}
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(s.requestLogger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, pagePath(1), http.StatusFound)
	})
	r.Route("/page/{page}", func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Get("/content", s.handleContent)
		r.Get("/next", s.handleNext)
		r.Get("/previous", s.handlePrevious)
		r.Post("/retry", s.handleRetry)
	})
	r.Post("/prefetch/{page}", s.handlePrefetch)

	r.Get("/health", handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

func (s *Server) controller(r *http.Request) (*pagination.Controller, *PathSource) {
	src := NewPathSource(r)
	return pagination.NewController(src, s.cache), src
}

// handlePage renders the full document. Pages past the last known page
// redirect to the last page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctrl, src := s.controller(r)
	if err := ctrl.SetCurrentPage(src.Page()); err == nil && src.Moved() {
		http.Redirect(w, r, src.Location(), http.StatusFound)
		return
	}

	view := ctrl.View(ctrl.Result())
	s.render(w, r, Page(view), view)
}

// handleContent waits for the current page and renders its fragment. A wait
// that outlasts ContentTimeout renders the loading view again, which polls.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	ctrl, src := s.controller(r)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.ContentTimeout)
	defer cancel()

	if _, err := s.cache.Fetch(ctx, cache.NewQueryKey(src.Page())); err != nil {
		if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
			return
		}
		if errors.Is(err, cache.ErrClosed) {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
	}

	view := ctrl.View(ctrl.Result())
	s.render(w, r, Content(view), view)
}

// handlePrefetch is the hover signal for the Next control of {page}.
func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	ctrl, _ := s.controller(r)
	if ctrl.OnHoverNext() {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	ctrl, src := s.controller(r)
	s.navigate(w, r, src, ctrl.OnClickNext())
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	ctrl, src := s.controller(r)
	s.navigate(w, r, src, ctrl.OnClickPrevious())
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, src *PathSource, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, src.Location(), http.StatusSeeOther)
}

// handleRetry re-issues the query for {page}.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	_, src := s.controller(r)
	s.cache.Refetch(cache.NewQueryKey(src.Page()))
	s.logger.Info().Int("page", src.Page()).Msg("Retry requested")
	http.Redirect(w, r, src.Location(), http.StatusSeeOther)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.config.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.config.Ready.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "Redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component, view pagination.View) {
	if view.State == pagination.StateLoading {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Error().Err(err).Int("page", view.Page).Msg("Render failed")
	}
	if view.State == pagination.StateError {
		s.logger.Error().
			Str("error", view.ErrorMessage).
			Int("page", view.Page).
			Msg("Showing error view")
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}
