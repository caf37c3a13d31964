// Package report renders session state into a markdown report covering
// inputs, results and an interpretation band, mirroring the layout of a
// conventional geotechnical letter report. The TUI passes the markdown
// through glamour; `talus report` writes it to a file as-is.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/nambucca-eng/talus/pkg/domain"
)

// Build renders the full report for a session. It requires a completed
// run; before one exists it returns domain.ErrNoResult.
func Build(state *domain.State, now time.Time) (string, error) {
	if state == nil || state.Result == nil {
		return "", domain.ErrNoResult
	}

	var b strings.Builder

	title := state.Project.Name
	if title == "" {
		title = "Slope Stability Analysis"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if state.Project.Location != "" {
		fmt.Fprintf(&b, "%s\n\n", state.Project.Location)
	}
	if state.Project.Reference != "" {
		fmt.Fprintf(&b, "Ref: %s  \n", state.Project.Reference)
	}
	fmt.Fprintf(&b, "%s\n\n", now.Format("2 January 2006"))

	b.WriteString("This report presents the results of a slope stability analysis conducted using " +
		"Bishop's method of slices. The analysis was performed to determine the factor of safety " +
		"against slope failure.\n\n")

	writeProject(&b, state.Project)
	writeGeometry(&b, state.Slope)
	writeMaterials(&b, state.Layers)
	writeLoads(&b, state.Loads)
	writeAnalysis(&b, state.Slope)
	writeResults(&b, state.Result)
	writeInterpretation(&b, state.Result.CriticalFOS)
	writeEngineer(&b, state.Project.Engineer, now)

	return b.String(), nil
}

// Summary renders the short post-run block shown in the results view.
func Summary(state *domain.State) (string, error) {
	if state == nil || state.Result == nil {
		return "", domain.ErrNoResult
	}

	var b strings.Builder
	b.WriteString("## Slope Stability Analysis Results\n\n")
	fmt.Fprintf(&b, "**Critical Factor of Safety: %.4f**\n\n", state.Result.CriticalFOS)

	fmt.Fprintf(&b, "- Slope height: %g m\n", state.Slope.Height)
	if state.Slope.Angle != nil {
		fmt.Fprintf(&b, "- Slope angle: %g°\n", *state.Slope.Angle)
	}
	if state.Slope.Length != nil {
		fmt.Fprintf(&b, "- Slope length: %g m\n", *state.Slope.Length)
	}
	if state.Slope.UphillAngle != nil {
		fmt.Fprintf(&b, "- Uphill angle: %g°\n", *state.Slope.UphillAngle)
	}
	if state.Slope.WaterTableDepth != nil {
		fmt.Fprintf(&b, "- Water table depth: %g m\n", *state.Slope.WaterTableDepth)
	}
	fmt.Fprintf(&b, "- Materials: %d, loads: %d\n", len(state.Layers), len(state.Loads))
	fmt.Fprintf(&b, "- Slices: %d, iterations: %d\n", state.Slope.Slices, state.Slope.Iterations)
	fmt.Fprintf(&b, "- Run at %s in %s\n", state.Result.RunAt.Format(time.RFC3339), state.Result.Elapsed.Round(time.Millisecond))

	return b.String(), nil
}

func writeProject(b *strings.Builder, p domain.ProjectInfo) {
	if p == (domain.ProjectInfo{}) {
		return
	}
	b.WriteString("## Project Details\n\n")
	if p.Name != "" {
		fmt.Fprintf(b, "- **Project:** %s\n", p.Name)
	}
	if p.Reference != "" {
		fmt.Fprintf(b, "- **Reference:** %s\n", p.Reference)
	}
	if p.Location != "" {
		fmt.Fprintf(b, "- **Location:** %s\n", p.Location)
	}
	if p.Client.Name != "" {
		fmt.Fprintf(b, "- **Client:** %s\n", p.Client.Name)
	}
	if p.Client.Company != "" {
		fmt.Fprintf(b, "- **Client company:** %s\n", p.Client.Company)
	}
	if p.Client.Address != "" {
		fmt.Fprintf(b, "- **Client address:** %s\n", p.Client.Address)
	}
	b.WriteString("\n")
}

func writeGeometry(b *strings.Builder, s domain.SlopeConfig) {
	b.WriteString("## Slope Geometry\n\n")
	fmt.Fprintf(b, "- **Height:** %g m\n", s.Height)
	if s.Angle != nil {
		fmt.Fprintf(b, "- **Angle:** %g°\n", *s.Angle)
	}
	if s.Length != nil {
		fmt.Fprintf(b, "- **Length:** %g m\n", *s.Length)
	}
	if s.UphillAngle != nil {
		fmt.Fprintf(b, "- **Uphill surface angle:** %g°\n", *s.UphillAngle)
	} else {
		b.WriteString("- **Uphill surface:** flat\n")
	}
	if s.WaterTableDepth != nil {
		fmt.Fprintf(b, "- **Water table depth:** %g m from top of slope\n", *s.WaterTableDepth)
	} else {
		b.WriteString("- No water table considered in the analysis\n")
	}
	b.WriteString("\n")
}

func writeMaterials(b *strings.Builder, layers []domain.MaterialLayer) {
	b.WriteString("## Material Properties\n\n")
	b.WriteString("| Layer | Unit Weight (kN/m³) | Friction Angle (°) | Cohesion (kPa) | Depth to Bottom (m) |\n")
	b.WriteString("|-------|---------------------|--------------------|----------------|---------------------|\n")
	for _, m := range layers {
		fmt.Fprintf(b, "| %s | %.2f | %.2f | %.2f | %.2f |\n",
			m.ID, m.UnitWeight, m.FrictionAngle, m.Cohesion, m.DepthToBottom)
	}
	b.WriteString("\n")
}

func writeLoads(b *strings.Builder, loads []domain.Load) {
	if len(loads) == 0 {
		return
	}
	b.WriteString("## Applied Loads\n\n")
	for _, l := range loads {
		switch l.Kind {
		case domain.LoadUDL:
			length := "infinite"
			if l.Length != nil {
				length = fmt.Sprintf("%.2f m", *l.Length)
			}
			fmt.Fprintf(b, "- %s: UDL %.2f kPa, offset %.2f m from crest, length %s\n",
				l.ID, l.Magnitude, l.Offset, length)
		case domain.LoadLine:
			fmt.Fprintf(b, "- %s: line load %.2f kN/m, offset %.2f m from crest\n",
				l.ID, l.Magnitude, l.Offset)
		}
	}
	b.WriteString("\n")
}

func writeAnalysis(b *strings.Builder, s domain.SlopeConfig) {
	b.WriteString("## Analysis Parameters\n\n")
	fmt.Fprintf(b, "- **Number of slices:** %d\n", s.Slices)
	fmt.Fprintf(b, "- **Number of iterations:** %d\n", s.Iterations)
	b.WriteString("- **Analysis method:** Bishop's Method of Slices\n")
	if s.LeftLimit != nil && s.RightLimit != nil {
		fmt.Fprintf(b, "- **Analysis limits:** left = %g m, right = %g m\n", *s.LeftLimit, *s.RightLimit)
	} else {
		b.WriteString("- **Analysis limits:** default (derived from slope coordinates)\n")
	}
	b.WriteString("\n")
}

func writeResults(b *strings.Builder, r *domain.AnalysisResult) {
	b.WriteString("## Analysis Results\n\n")
	fmt.Fprintf(b, "**Critical Factor of Safety (FOS): %.4f**\n\n", r.CriticalFOS)
	fmt.Fprintf(b, "Trial failure surfaces evaluated: %d\n\n", r.Surfaces)
}

func writeInterpretation(b *strings.Builder, fos float64) {
	b.WriteString("## Interpretation\n\n")
	switch {
	case fos < 1.0:
		fmt.Fprintf(b, "A factor of safety of %.4f indicates that the slope is unstable and failure is likely to occur.\n", fos)
	case fos < 1.3:
		fmt.Fprintf(b, "A factor of safety of %.4f indicates marginal stability. The slope may be at risk of failure.\n", fos)
	case fos < 1.5:
		fmt.Fprintf(b, "A factor of safety of %.4f indicates acceptable stability for temporary conditions.\n", fos)
	default:
		fmt.Fprintf(b, "A factor of safety of %.4f indicates acceptable stability for permanent conditions.\n", fos)
	}
	b.WriteString("\nNote: The analysis assumes circular failure surfaces and uses Bishop's simplified method. " +
		"Results should be interpreted by a qualified geotechnical engineer in the context of " +
		"site-specific conditions.\n\n")
}

func writeEngineer(b *strings.Builder, e domain.Engineer, now time.Time) {
	if e == (domain.Engineer{}) {
		return
	}
	b.WriteString("## Engineer\n\n")
	if e.Name != "" {
		fmt.Fprintf(b, "- **Engineer:** %s\n", e.Name)
	}
	if e.Company != "" {
		fmt.Fprintf(b, "- **Company:** %s\n", e.Company)
	}
	if e.Email != "" {
		fmt.Fprintf(b, "- **Email:** %s\n", e.Email)
	}
	if e.Phone != "" {
		fmt.Fprintf(b, "- **Phone:** %s\n", e.Phone)
	}
	fmt.Fprintf(b, "\nDate: %s\n", now.Format("2 January 2006"))
}
