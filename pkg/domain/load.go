package domain

// LoadKind discriminates the load variant.
type LoadKind string

const (
	// LoadUDL is a uniform distributed load on the uphill surface.
	LoadUDL LoadKind = "udl"
	// LoadLine is a knife-edge line load.
	LoadLine LoadKind = "line"
)

// Load is the tagged union over UDL and line loads. Exactly the fields
// for the active Kind are meaningful.
type Load struct {
	// ID is assigned by the shell on insertion (UDL1, LL1, ...).
	ID   string   `json:"id" yaml:"id"`
	Kind LoadKind `json:"kind" yaml:"kind"`

	// Magnitude: kPa for UDLs, kN/m for line loads.
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`

	// Offset from the slope crest in metres.
	Offset float64 `json:"offset" yaml:"offset"`

	// Length of a UDL in metres; nil means it extends indefinitely.
	// Unused for line loads.
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// NewUDL builds a uniform distributed load. length nil = infinite.
func NewUDL(magnitude, offset float64, length *float64) Load {
	return Load{Kind: LoadUDL, Magnitude: magnitude, Offset: offset, Length: length}
}

// NewLineLoad builds a line load.
func NewLineLoad(magnitude, offset float64) Load {
	return Load{Kind: LoadLine, Magnitude: magnitude, Offset: offset}
}
