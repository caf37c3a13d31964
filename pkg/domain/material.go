package domain

// MaterialLayer is one soil stratum. Layers form an ordered sequence,
// top of the profile first; order is insertion order and matters to the
// engine when it resolves which stratum a slice base crosses.
type MaterialLayer struct {
	// ID is assigned by the shell on insertion (L1, L2, ...).
	ID string `json:"id" yaml:"id"`

	// UnitWeight in kN/m³.
	UnitWeight float64 `json:"unit_weight" yaml:"unit_weight"`

	// FrictionAngle in degrees.
	FrictionAngle float64 `json:"friction_angle" yaml:"friction_angle"`

	// Cohesion in kPa.
	Cohesion float64 `json:"cohesion" yaml:"cohesion"`

	// DepthToBottom of the stratum, metres from the top of the slope.
	DepthToBottom float64 `json:"depth_to_bottom" yaml:"depth_to_bottom"`
}
