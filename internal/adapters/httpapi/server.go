// Package httpapi exposes the session shell over HTTP for server mode:
// session CRUD on slope, layers and loads, synchronous runs, plot
// retrieval and the report, plus health and prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nambucca-eng/talus/internal/logging"
	"github.com/nambucca-eng/talus/internal/report"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/ports"
	"github.com/nambucca-eng/talus/pkg/session"
)

// Server wires the session manager and the engine into HTTP handlers.
type Server struct {
	manager *session.Manager
	engine  ports.AnalysisEngine
	timeout time.Duration
	maxFOS  float64
	logger  *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithTimeout bounds each run triggered over HTTP.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithMaxFOS sets the default all-planes plot filter.
func WithMaxFOS(v float64) Option {
	return func(s *Server) { s.maxFOS = v }
}

// WithLogger sets the request/run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the given manager and engine.
func NewHandler(manager *session.Manager, engine ports.AnalysisEngine, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		engine:  engine,
		timeout: session.DefaultTimeout,
		maxFOS:  domain.DefaultMaxFOS,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Put("/slope", s.putSlope)
			r.Put("/project", s.putProject)
			r.Post("/layers", s.postLayer)
			r.Delete("/layers/{layerID}", s.deleteLayer)
			r.Post("/loads", s.postLoad)
			r.Delete("/loads/{loadID}", s.deleteLoad)
			r.Post("/run", s.postRun)
			r.Get("/plot/{mode}", s.getPlot)
			r.Get("/report", s.getReport)
		})
	})

	return r
}

// withShell loads the session, hands a Shell to fn, and persists the
// resulting snapshot, all under the session lock.
func (s *Server) withShell(r *http.Request, fn func(*session.Shell) error) error {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	return s.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := s.manager.Store().Load(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return err
			}
			state = domain.NewState()
		}

		shell := session.NewShell(s.engine,
			session.WithState(state),
			session.WithTimeout(s.timeout),
			session.WithMaxFOS(s.maxFOS),
			session.WithLogger(s.logger),
		)

		if err := fn(shell); err != nil {
			return err
		}

		return s.manager.Store().Save(ctx, sessionID, shell.Snapshot())
	})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	// Plot bytes are fetched via /plot/{mode}; strip them from the
	// snapshot to keep the JSON small.
	state = state.Clone()
	if state.Result != nil {
		state.Result.Plots = nil
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putSlope(w http.ResponseWriter, r *http.Request) {
	var cfg domain.SlopeConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	err := s.withShell(r, func(shell *session.Shell) error {
		shell.UpdateSlope(cfg)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putProject(w http.ResponseWriter, r *http.Request) {
	var info domain.ProjectInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	err := s.withShell(r, func(shell *session.Shell) error {
		shell.SetProject(info)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postLayer(w http.ResponseWriter, r *http.Request) {
	var layer domain.MaterialLayer
	if err := json.NewDecoder(r.Body).Decode(&layer); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var id string
	err := s.withShell(r, func(shell *session.Shell) error {
		id = shell.AddLayer(layer)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deleteLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "layerID")
	err := s.withShell(r, func(shell *session.Shell) error {
		return shell.RemoveLayer(id)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postLoad(w http.ResponseWriter, r *http.Request) {
	var load domain.Load
	if err := json.NewDecoder(r.Body).Decode(&load); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	var id string
	err := s.withShell(r, func(shell *session.Shell) error {
		var addErr error
		id, addErr = shell.AddLoad(load)
		return addErr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deleteLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "loadID")
	err := s.withShell(r, func(shell *session.Shell) error {
		return shell.RemoveLoad(id)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type runRequest struct {
	PlotMode string   `json:"plot_mode"`
	MaxFOS   *float64 `json:"max_fos,omitempty"`
}

type runResponse struct {
	CriticalFOS float64 `json:"critical_fos"`
	Surfaces    int     `json:"surfaces"`
	ElapsedMS   int64   `json:"elapsed_ms"`
}

func (s *Server) postRun(w http.ResponseWriter, r *http.Request) {
	var body runRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mode, err := domain.ParsePlotMode(body.PlotMode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var (
		result *domain.AnalysisResult
		runErr error
	)
	err = s.withShell(r, func(shell *session.Shell) error {
		if body.MaxFOS != nil {
			shell.SetMaxFOS(*body.MaxFOS)
		}
		result, runErr = shell.RunAnalysis(r.Context(), mode)
		// A failed run is still persisted: the session keeps its error
		// string while all input survives for correction.
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runErr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": runErr.Error()})
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		CriticalFOS: result.CriticalFOS,
		Surfaces:    result.Surfaces,
		ElapsedMS:   result.Elapsed.Milliseconds(),
	})
}

func (s *Server) getPlot(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParsePlotMode(chi.URLParam(r, "mode"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	state, err := s.manager.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := state.Result.Plot(mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	state, err := s.manager.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	md, err := report.Build(state, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoResult),
		errors.Is(err, domain.ErrPlotUnavailable):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRunInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownPlotMode),
		errors.Is(err, domain.ErrUnknownLoadKind):
		status = http.StatusBadRequest
	case domain.IsEngineError(err):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
