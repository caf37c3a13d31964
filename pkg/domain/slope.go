package domain

// SlopeConfig describes the slope geometry and the analysis tuning knobs.
// Optional fields are pointers: nil means "not set" and the engine applies
// its own default (flat uphill surface, dry slope, auto limits).
type SlopeConfig struct {
	// Height of the slope in metres. Required, must be positive.
	Height float64 `json:"height" yaml:"height"`

	// Angle of the slope face in degrees. Mutually complementary with
	// Length: at least one of the two must be set.
	Angle *float64 `json:"angle,omitempty" yaml:"angle,omitempty"`

	// Length is the horizontal run of the slope face in metres.
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`

	// UphillAngle is the signed inclination of the surface behind the
	// crest, in degrees. Positive slopes upward, negative downward,
	// nil is flat.
	UphillAngle *float64 `json:"uphill_angle,omitempty" yaml:"uphill_angle,omitempty"`

	// WaterTableDepth is measured from the top of the slope in metres.
	// nil means no water table.
	WaterTableDepth *float64 `json:"water_table_depth,omitempty" yaml:"water_table_depth,omitempty"`

	// LeftLimit and RightLimit bound the failure-surface search on the
	// x axis. Both must be set, or both nil (engine derives defaults
	// from the slope coordinates).
	LeftLimit  *float64 `json:"left_limit,omitempty" yaml:"left_limit,omitempty"`
	RightLimit *float64 `json:"right_limit,omitempty" yaml:"right_limit,omitempty"`

	// Slices is the number of vertical slices per trial surface.
	Slices int `json:"slices" yaml:"slices"`

	// Iterations is the number of trial failure surfaces to search.
	Iterations int `json:"iterations" yaml:"iterations"`
}

// Analysis tuning defaults, matching the engine's documented example.
const (
	DefaultSlices     = 50
	DefaultIterations = 2000
)

// NewSlopeConfig returns a config with tuning defaults applied and the
// given face geometry. Pass a nil angle when defining the face by length.
func NewSlopeConfig(height float64, angle *float64) SlopeConfig {
	return SlopeConfig{
		Height:     height,
		Angle:      angle,
		Slices:     DefaultSlices,
		Iterations: DefaultIterations,
	}
}

// Float64 is a convenience for building optional fields in literals.
func Float64(v float64) *float64 { return &v }
