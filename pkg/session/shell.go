package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nambucca-eng/talus/internal/logging"
	"github.com/nambucca-eng/talus/internal/metrics"
	"github.com/nambucca-eng/talus/internal/validator"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/ports"
)

// Shell owns the mutable state of one session and drives the external
// engine. All methods are safe for concurrent use, but the interaction
// model is request/response: RunAnalysis blocks and a second run while
// one is in flight is rejected, not queued.
type Shell struct {
	mu      sync.Mutex
	state   *domain.State
	running bool

	engine  ports.AnalysisEngine
	logger  *slog.Logger
	timeout time.Duration
	maxFOS  float64
	now     func() time.Time
}

// Option configures the Shell.
type Option func(*Shell)

// WithLogger sets a structured logger for run events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// WithTimeout bounds each engine call. Zero disables the bound (the
// caller's context still applies).
func WithTimeout(d time.Duration) Option {
	return func(s *Shell) { s.timeout = d }
}

// WithMaxFOS sets the initial all-planes plot filter.
func WithMaxFOS(v float64) Option {
	return func(s *Shell) {
		if v > 0 {
			s.maxFOS = v
		}
	}
}

// WithState restores a previously persisted snapshot instead of starting
// idle.
func WithState(state *domain.State) Option {
	return func(s *Shell) {
		if state != nil {
			s.state = state.Clone()
		}
	}
}

// DefaultTimeout bounds an engine call when the caller does not choose.
const DefaultTimeout = 120 * time.Second

// NewShell creates a Shell bound to the given engine.
func NewShell(engine ports.AnalysisEngine, opts ...Option) *Shell {
	s := &Shell{
		state:   domain.NewState(),
		engine:  engine,
		logger:  logging.NewNop(),
		timeout: DefaultTimeout,
		maxFOS:  domain.DefaultMaxFOS,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateSlope replaces the current slope configuration. It always
// succeeds; structural validation is deferred to run time.
func (s *Shell) UpdateSlope(cfg domain.SlopeConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Slope = cfg.Clone()
}

// SetProject replaces the report metadata.
func (s *Shell) SetProject(info domain.ProjectInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Project = info
}

// SetMaxFOS sets the filter applied to the all-planes plot.
func (s *Shell) SetMaxFOS(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxFOS = v
}

// AddLayer appends a material layer and returns its assigned ID.
// Layer order is insertion order, top of the profile first.
func (s *Shell) AddLayer(layer domain.MaterialLayer) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LayerSeq++
	layer.ID = fmt.Sprintf("L%d", s.state.LayerSeq)
	s.state.Layers = append(s.state.Layers, layer)
	return layer.ID
}

// RemoveLayer removes the layer with the given ID. An unknown ID returns
// domain.ErrNotFound and leaves the sequence untouched.
func (s *Shell) RemoveLayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.state.Layers {
		if l.ID == id {
			s.state.Layers = append(s.state.Layers[:i], s.state.Layers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("layer %q: %w", id, domain.ErrNotFound)
}

// AddLoad adds a load and returns its assigned ID (UDL2, LL1, ...).
func (s *Shell) AddLoad(load domain.Load) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch load.Kind {
	case domain.LoadUDL:
		s.state.UDLSeq++
		load.ID = fmt.Sprintf("UDL%d", s.state.UDLSeq)
	case domain.LoadLine:
		s.state.LineSeq++
		load.ID = fmt.Sprintf("LL%d", s.state.LineSeq)
	default:
		return "", fmt.Errorf("load kind %q: %w", load.Kind, domain.ErrUnknownLoadKind)
	}
	s.state.Loads = append(s.state.Loads, load)
	return load.ID, nil
}

// RemoveLoad removes the load with the given ID, with the same
// not-found-is-reported policy as RemoveLayer.
func (s *Shell) RemoveLoad(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.state.Loads {
		if l.ID == id {
			s.state.Loads = append(s.state.Loads[:i], s.state.Loads[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("load %q: %w", id, domain.ErrNotFound)
}

// RunAnalysis assembles the current input into a request, validates it,
// and invokes the engine synchronously. On success the result is
// retained, superseding the previous one. On any failure the error is
// recorded and returned, and every input survives unchanged so the user
// can correct and retry.
func (s *Shell) RunAnalysis(ctx context.Context, mode domain.PlotMode) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}

	req := domain.AnalysisRequest{
		Slope:     s.state.Slope.Clone(),
		Materials: append([]domain.MaterialLayer(nil), s.state.Layers...),
		Loads:     append([]domain.Load(nil), s.state.Loads...),
		PlotMode:  mode,
		MaxFOS:    s.maxFOS,
	}

	if err := validator.ValidateRequest(req); err != nil {
		s.state.Phase = domain.PhaseError
		s.state.LastError = err.Error()
		s.mu.Unlock()
		metrics.RunFailed("validation")
		return nil, err
	}

	s.running = true
	s.state.Phase = domain.PhaseRunning
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	s.logger.Info("starting analysis",
		"plot_mode", string(mode),
		"layers", len(req.Materials),
		"loads", len(req.Loads),
	)
	result, err := s.engine.Analyze(ctx, req)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false

	if err != nil {
		s.state.Phase = domain.PhaseError
		s.state.LastError = err.Error()
		s.logger.Warn("analysis failed", "err", err, "elapsed", elapsed)
		metrics.RunFailed(failureReason(err))
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	result.RunAt = start
	result.Elapsed = elapsed
	s.state.Result = result
	s.state.Phase = domain.PhaseResult
	s.state.LastError = ""
	s.logger.Info("analysis complete", "critical_fos", result.CriticalFOS, "elapsed", elapsed)
	metrics.RunSucceeded(elapsed)
	return result.Clone(), nil
}

// UpdatePlot returns the retained artifact for the given mode. It never
// invokes the engine: a mode the last run did not render yields
// domain.ErrPlotUnavailable, and before any successful run it yields
// domain.ErrNoResult.
func (s *Shell) UpdatePlot(mode domain.PlotMode) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.state.Result.Plot(mode)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// Result returns a copy of the last result, or domain.ErrNoResult.
func (s *Shell) Result() (*domain.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Result == nil {
		return nil, domain.ErrNoResult
	}
	return s.state.Result.Clone(), nil
}

// Snapshot returns a deep copy of the full session state, suitable for
// persistence or report generation.
func (s *Shell) Snapshot() *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Layers returns a copy of the current layer sequence, in order.
func (s *Shell) Layers() []domain.MaterialLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MaterialLayer(nil), s.state.Layers...)
}

// Loads returns a copy of the current loads, in insertion order.
func (s *Shell) Loads() []domain.Load {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Load(nil), s.state.Loads...)
}

// Phase reports where the session sits in its lifecycle.
func (s *Shell) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase
}

// LastError returns the display string of the last failed run, or "".
func (s *Shell) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastError
}

// LoadDefaultExample seeds the session with the engine's documented
// example: a 3 m slope at 30° with a 4 m water table, two strata, two
// UDLs and one line load.
func (s *Shell) LoadDefaultExample() {
	s.UpdateSlope(domain.SlopeConfig{
		Height:          3,
		Angle:           domain.Float64(30),
		WaterTableDepth: domain.Float64(4),
		Slices:          domain.DefaultSlices,
		Iterations:      domain.DefaultIterations,
	})
	s.AddLayer(domain.MaterialLayer{UnitWeight: 20, FrictionAngle: 45, Cohesion: 2, DepthToBottom: 2})
	s.AddLayer(domain.MaterialLayer{UnitWeight: 20, FrictionAngle: 30, Cohesion: 2, DepthToBottom: 5})
	s.AddLoad(domain.NewUDL(100, 2, domain.Float64(1)))
	s.AddLoad(domain.NewUDL(20, 0, nil))
	s.AddLoad(domain.NewLineLoad(10, 3))
}

func failureReason(err error) string {
	if domain.IsEngineError(err) {
		return "engine"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "other"
}
