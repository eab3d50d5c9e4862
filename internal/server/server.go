// Package server exposes translation, pair editing and the example corpus
// over a local JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-formalize/internal/examples"
	"github.com/alnah/go-formalize/internal/formalize"
	"github.com/alnah/go-formalize/internal/session"
)

// Defaults.
const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	defaultDrainTimeout = 30 * time.Second
	readHeaderTimeout   = 10 * time.Second

	// maxImportBytes bounds CSV uploads.
	maxImportBytes = 10 << 20
)

// Translator runs the translation pipeline. *formalize.Service satisfies it.
type Translator interface {
	Translate(ctx context.Context, text string, exs []examples.Example) (formalize.Result, error)
}

// Server serves the API. Create with New.
type Server struct {
	translator   Translator
	examples     *examples.Collection
	session      *session.Session
	logger       *zap.Logger
	drainTimeout time.Duration
	router       *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSession shares a session with the caller.
func WithSession(sess *session.Session) Option {
	return func(s *Server) {
		if sess != nil {
			s.session = sess
		}
	}
}

// WithDrainTimeout bounds how long shutdown waits for in-flight requests.
func WithDrainTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.drainTimeout = d
		}
	}
}

// New returns a Server backed by t and coll.
func New(t Translator, coll *examples.Collection, opts ...Option) *Server {
	s := &Server{
		translator:   t,
		examples:     coll,
		session:      session.New(),
		logger:       zap.NewNop(),
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Session returns the session the server writes results to.
func (s *Server) Session() *session.Session {
	return s.session
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	api.POST("/translate", s.translate)

	api.GET("/pairs", s.listPairs)
	api.PATCH("/pairs/:id", s.editPair)
	api.POST("/pairs/:id/examples", s.promotePair)
	api.POST("/pairs/examples", s.promoteAllPairs)

	api.GET("/examples", s.listExamples)
	api.POST("/examples", s.addExample)
	api.PUT("/examples/:index", s.updateExample)
	api.DELETE("/examples/:index", s.deleteExample)
	api.DELETE("/examples", s.clearExamples)
	api.POST("/examples/import", s.importExamples)
	api.GET("/examples/export", s.exportExamples)

	return r
}

// Serve accepts connections on ln until ctx is canceled, then stops accepting
// and waits up to the drain timeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("draining", zap.Duration("timeout", s.drainTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		<-errCh
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	s.logger.Info("stopped")
	return nil
}

// requestLogger logs one line per request.
func requestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		l.Info("request", fields...)
	}
}
