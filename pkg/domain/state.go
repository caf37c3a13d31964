package domain

// Phase is the session's position in its lifecycle.
type Phase string

const (
	// PhaseIdle: fresh session, no run attempted yet.
	PhaseIdle Phase = "idle"
	// PhaseRunning: an analysis call is in flight. The only blocking state.
	PhaseRunning Phase = "running"
	// PhaseResult: last run succeeded and its result is retained.
	PhaseResult Phase = "idle_with_result"
	// PhaseError: last run failed; the error string is retained and every
	// input survives for correction and retry.
	PhaseError Phase = "idle_with_error"
)

// State is the full snapshot of one session: all mutable input plus the
// outcome of the last run. It serializes cleanly to JSON so stores can
// persist it as-is.
type State struct {
	Phase Phase `json:"phase"`

	Project ProjectInfo     `json:"project"`
	Slope   SlopeConfig     `json:"slope"`
	Layers  []MaterialLayer `json:"layers"`
	Loads   []Load          `json:"loads"`

	// Result of the last successful run; nil until one completes.
	Result *AnalysisResult `json:"result,omitempty"`

	// LastError is the display string of the last failed run.
	LastError string `json:"last_error,omitempty"`

	// Sequence counters for assigning layer/load IDs. Monotonic per
	// session so removed IDs are never reused.
	LayerSeq int `json:"layer_seq"`
	UDLSeq   int `json:"udl_seq"`
	LineSeq  int `json:"line_seq"`
}

// NewState creates a clean idle session with tuning defaults.
func NewState() *State {
	return &State{
		Phase: PhaseIdle,
		Slope: SlopeConfig{
			Slices:     DefaultSlices,
			Iterations: DefaultIterations,
		},
	}
}

// Clone returns a deep copy. Stores and the shell use it so callers can
// never mutate retained state through a shared pointer.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Layers = append([]MaterialLayer(nil), s.Layers...)
	out.Loads = append([]Load(nil), s.Loads...)
	out.Slope = s.Slope.Clone()
	for i, l := range out.Loads {
		out.Loads[i].Length = cloneFloat(l.Length)
	}
	out.Result = s.Result.Clone()
	return &out
}

// Clone copies the config including its optional fields, so the copy can
// never be mutated through a shared pointer.
func (c SlopeConfig) Clone() SlopeConfig {
	c.Angle = cloneFloat(c.Angle)
	c.Length = cloneFloat(c.Length)
	c.UphillAngle = cloneFloat(c.UphillAngle)
	c.WaterTableDepth = cloneFloat(c.WaterTableDepth)
	c.LeftLimit = cloneFloat(c.LeftLimit)
	c.RightLimit = cloneFloat(c.RightLimit)
	return c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
