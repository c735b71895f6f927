// Package server exposes the HTTP API: address details, relationship
// graphs, exploration sessions, and the upstream call log.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chainlens/chainlens/pkg/calllog"
	"github.com/chainlens/chainlens/pkg/errors"
	"github.com/chainlens/chainlens/pkg/session"
)

// Server routes API requests to the fetcher and the session service.
type Server struct {
	fetcher  session.Fetcher
	sessions *session.Service
	calls    *calllog.Log
	logger   *log.Logger
	router   chi.Router
}

// New assembles the API server. The call log should be the same log the
// fetcher records into, so /api/calls reflects real upstream traffic.
func New(fetcher session.Fetcher, sessions *session.Service, calls *calllog.Log, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		fetcher:  fetcher,
		sessions: sessions,
		calls:    calls,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/address/{address}", s.handleAddressDetails)
		r.Get("/address/{address}/graph", s.handleAddressGraph)

		r.Get("/calls", s.handleCallsList)
		r.Delete("/calls", s.handleCallsClear)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleSessionCreate)
			r.Get("/{id}", s.handleSessionGet)
			r.Post("/{id}/expand", s.handleSessionExpand)
			r.Post("/{id}/more", s.handleSessionMore)
			r.Delete("/{id}", s.handleSessionDelete)
		})
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	s.logger.Info("listening", "addr", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{
		Error: errorDetail{Code: string(code), Detail: errors.UserMessage(err)},
	})
}
