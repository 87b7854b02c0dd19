// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package menu exposes the runner operations over HTTP.
//
// Every operation is registered as a menu action; GET /menu lists them so a
// client can render the same entries a document editor would show.
package menu

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/tabsift/internal/runner"
)

// Controller is the runner surface served by the menu.
type Controller interface {
	Run(ctx context.Context) (runner.Summary, error)
	Reset(ctx context.Context) error
	Status(ctx context.Context) (runner.RunState, error)
}

// Action is one menu entry.
type Action struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// RunResponse is the body returned by POST /run.
type RunResponse struct {
	Started      bool            `json:"started"`
	Processed    int             `json:"processed"`
	Failed       int             `json:"failed"`
	CopyFailures int             `json:"copy_failures"`
	Suspended    bool            `json:"suspended"`
	Completed    bool            `json:"completed"`
	State        runner.RunState `json:"state"`
}

// Server is the HTTP menu.
type Server struct {
	router  chi.Router
	ctl     Controller
	log     *slog.Logger
	token   string
	actions []Action
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer <token>" on every action.
// GET /health stays public.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// NewServer creates the menu server and registers its actions.
func NewServer(ctl Controller, log *slog.Logger, opts ...Option) *Server {
	s := &Server{ctl: ctl, log: log}
	for _, o := range opts {
		o(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Actions returns the registered menu entries in registration order.
func (s *Server) Actions() []Action {
	return append([]Action(nil), s.actions...)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if s.token != "" {
			r.Use(bearerAuth(s.token))
		}
		s.register(r, Action{Name: "Start / Resume", Method: http.MethodPost, Path: "/run",
			Description: "start a new cycle or resume the one in progress"}, s.handleRun)
		s.register(r, Action{Name: "Reset", Method: http.MethodPost, Path: "/reset",
			Description: "discard progress so the next run starts over"}, s.handleReset)
		s.register(r, Action{Name: "Status", Method: http.MethodGet, Path: "/status",
			Description: "show the cycle state"}, s.handleStatus)
		r.Get("/menu", s.handleMenu)
	})

	s.router = r
}

func (s *Server) register(r chi.Router, a Action, h http.HandlerFunc) {
	r.Method(a.Method, a.Path, h)
	s.actions = append(s.actions, a)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": s.actions})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ctl.Run(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	st, err := s.ctl.Status(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{
		Started:      sum.Started,
		Processed:    sum.Processed,
		Failed:       sum.Failed,
		CopyFailures: sum.CopyFailures,
		Suspended:    sum.Suspended,
		Completed:    sum.Completed,
		State:        st,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ctl.Reset(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "progress reset"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.ctl.Status(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   st,
		"summary": st.String(),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, runner.ErrBusy):
		code = http.StatusConflict
	case errors.Is(err, runner.ErrEnumerationEmpty):
		code = http.StatusUnprocessableEntity
	default:
		s.log.Error("menu action failed", "error", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// bearerAuth rejects requests without the expected bearer token.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request with its status and duration.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
