package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/lexis/internal/logger"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes sets the largest accepted request body.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server is the HTTP front end of the legal assistant.
type Server struct {
	ports          *Ports
	maxUploadBytes int64
	handler        http.Handler
}

// NewServer builds the API routes around ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{ports: ports, maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ask-existing", s.handleAskExisting)
	mux.HandleFunc("POST /ask-upload", s.handleAskUpload)
	mux.HandleFunc("POST /ask-context", s.handleAskContext)
	mux.HandleFunc("POST /defend-case", s.handleDefendCase)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /corpora", s.handleCorpora)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = loggingMiddleware(corsMiddleware(mux))
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("HTTP API shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
