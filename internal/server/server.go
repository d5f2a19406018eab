// Package server exposes agentgraph over HTTP with gin.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/generate"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/observability"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/store"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/view"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// Server serves the HTTP API.
type Server struct {
	store     store.Store
	generator *generate.Generator
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	chartBase string
	language  string

	locks docLocks
}

// Option configures a Server.
type Option func(*Server)

// WithGenerator enables the generate and sop endpoints.
func WithGenerator(g *generate.Generator) Option {
	return func(s *Server) { s.generator = g }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithChartBase sets the chart rendering service used for Mermaid views.
func WithChartBase(base string) Option {
	return func(s *Server) { s.chartBase = base }
}

// WithLanguage sets the language used when a request names none.
func WithLanguage(tag string) Option {
	return func(s *Server) { s.language = tag }
}

// New creates a Server backed by st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:     st,
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		chartBase: view.DefaultChartBase,
		language:  "en",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/healthz", s.health)

	v1 := r.Group("/v1")
	v1.POST("/repair", s.repair)
	v1.POST("/import", s.importDocument)
	v1.POST("/views/:format", s.renderView)
	v1.POST("/generate", s.generate)
	v1.POST("/sop", s.sop)

	docs := v1.Group("/workflows")
	docs.GET("", s.listWorkflows)
	docs.GET("/:name", s.getWorkflow)
	docs.PUT("/:name", s.putWorkflow)
	docs.DELETE("/:name", s.deleteWorkflow)
	docs.POST("/:name/ops", s.applyOp)

	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// bundle picks the locale from the explicit tag, then the lang query
// parameter, then Accept-Language, then the server default.
func (s *Server) bundle(c *gin.Context, explicit string) locale.Bundle {
	for _, tag := range []string{explicit, c.Query("lang"), c.GetHeader("Accept-Language")} {
		if tag != "" {
			return locale.For(tag)
		}
	}
	return locale.For(s.language)
}

// lock serializes edits to one document. The returned func unlocks.
func (s *Server) lock(name string) func() {
	return s.locks.lock(name)
}

// docLocks hands out one mutex per document name. An entry lives only while
// some request holds or waits for it, so the table is bounded by the
// requests in flight.
type docLocks struct {
	mu   sync.Mutex
	held map[string]*docLock
}

type docLock struct {
	sync.Mutex
	refs int
}

func (l *docLocks) lock(name string) func() {
	l.mu.Lock()
	if l.held == nil {
		l.held = make(map[string]*docLock)
	}
	d, ok := l.held[name]
	if !ok {
		d = &docLock{}
		l.held[name] = d
	}
	d.refs++
	l.mu.Unlock()

	d.Lock()
	return func() {
		d.Unlock()
		l.mu.Lock()
		d.refs--
		if d.refs == 0 {
			delete(l.held, name)
		}
		l.mu.Unlock()
	}
}

func (l *docLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		elapsed := observability.TimedOperation()
		c.Next()
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Float64("duration_ms", elapsed()),
		)
	}
}
