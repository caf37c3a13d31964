package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotFound is returned when a layer or load ID does not exist. Removal
// of an unknown ID reports it and leaves the session untouched.
var ErrNotFound = errors.New("not found")

// ErrNoMaterials is returned when a run is attempted with an empty layer
// sequence.
var ErrNoMaterials = errors.New("at least one material layer is required")

// ErrNoResult is returned when a result-dependent operation runs before
// any successful analysis.
var ErrNoResult = errors.New("no analysis result yet")

// ErrPlotUnavailable is returned when the retained result has no artifact
// for the requested mode.
var ErrPlotUnavailable = errors.New("plot not available for requested mode")

// ErrRunInProgress is returned when RunAnalysis is called while another
// run holds the session.
var ErrRunInProgress = errors.New("analysis already running")

// ErrUnknownLoadKind is returned when a load variant is neither a UDL
// nor a line load.
var ErrUnknownLoadKind = errors.New("unknown load kind")

// ErrUnknownPlotMode is returned for mode strings outside
// {boundary, critical, all_planes}.
var ErrUnknownPlotMode = errors.New("unknown plot mode")

// EngineError wraps a domain failure reported by the external engine
// (non-convergence, invalid geometry). It is always surfaced to the user
// and never crashes the session.
type EngineError struct {
	Msg string
}

func (e *EngineError) Error() string { return "engine: " + e.Msg }

// IsEngineError reports whether err originated in the external engine.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}
