package domain

import "time"

// PlotMode selects which geometry the engine renders.
type PlotMode string

const (
	// PlotBoundary renders the slope boundary and strata only.
	PlotBoundary PlotMode = "boundary"
	// PlotCritical renders the critical failure surface.
	PlotCritical PlotMode = "critical"
	// PlotAllPlanes renders every trial surface below the MaxFOS filter.
	PlotAllPlanes PlotMode = "all_planes"
)

// DefaultMaxFOS is the all-planes filter applied when the caller does not
// choose one.
const DefaultMaxFOS = 2.0

// ParsePlotMode validates a user-supplied mode string.
func ParsePlotMode(s string) (PlotMode, error) {
	switch PlotMode(s) {
	case PlotBoundary, PlotCritical, PlotAllPlanes:
		return PlotMode(s), nil
	}
	return "", ErrUnknownPlotMode
}

// AnalysisRequest is the immutable bundle handed to the engine. The shell
// assembles it from copies of its current state, so later edits to the
// session never leak into an in-flight run.
type AnalysisRequest struct {
	Slope     SlopeConfig     `json:"slope" yaml:"slope"`
	Materials []MaterialLayer `json:"materials" yaml:"materials"`
	Loads     []Load          `json:"loads" yaml:"loads"`

	// PlotMode requests which artifact(s) to render alongside the FOS.
	PlotMode PlotMode `json:"plot_mode" yaml:"plot_mode"`

	// MaxFOS filters the all-planes plot; ignored for other modes.
	MaxFOS float64 `json:"max_fos" yaml:"max_fos"`
}

// AnalysisResult is the engine's answer for one run. It supersedes the
// previous result; the shell holds it until overwritten or the session
// ends.
type AnalysisResult struct {
	// CriticalFOS is the minimum factor of safety found.
	CriticalFOS float64 `json:"critical_fos"`

	// Surfaces is the number of trial failure surfaces the search produced.
	Surfaces int `json:"surfaces"`

	// Plots holds the rendered artifacts by mode, PNG-encoded. Opaque to
	// the shell: display surfaces pass the bytes through untouched.
	Plots map[PlotMode][]byte `json:"plots,omitempty"`

	RunAt   time.Time     `json:"run_at"`
	Elapsed time.Duration `json:"elapsed"`
}

// Clone deep-copies the result, including plot artifacts.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Plots != nil {
		out.Plots = make(map[PlotMode][]byte, len(r.Plots))
		for k, v := range r.Plots {
			out.Plots[k] = append([]byte(nil), v...)
		}
	}
	return &out
}

// Plot returns the artifact for a mode.
func (r *AnalysisResult) Plot(mode PlotMode) ([]byte, error) {
	if r == nil {
		return nil, ErrNoResult
	}
	data, ok := r.Plots[mode]
	if !ok || len(data) == 0 {
		return nil, ErrPlotUnavailable
	}
	return data, nil
}
