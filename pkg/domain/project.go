package domain

// ProjectInfo carries the report-only metadata: who ran the analysis, for
// whom and where. None of it influences the engine.
type ProjectInfo struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`

	Client   Party    `json:"client,omitempty" yaml:"client,omitempty"`
	Engineer Engineer `json:"engineer,omitempty" yaml:"engineer,omitempty"`
}

// Party identifies the client side of the engagement.
type Party struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// Engineer identifies the responsible engineer.
type Engineer struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
}
