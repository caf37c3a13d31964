// Package validator checks an assembled analysis request before it
// crosses the engine boundary. It collects every violation instead of
// stopping at the first so the user can fix a form in one pass.
package validator

import (
	"fmt"
	"strings"

	"github.com/nambucca-eng/talus/pkg/domain"
)

// ValidateRequest verifies structural consistency of the request.
// Deeper geotechnical checks belong to the engine; anything it rejects is
// surfaced to the user the same way these are.
func ValidateRequest(req domain.AnalysisRequest) error {
	var errs []string

	if req.Slope.Height <= 0 {
		errs = append(errs, fmt.Sprintf("slope height must be positive (got %g)", req.Slope.Height))
	}

	if req.Slope.Angle == nil && req.Slope.Length == nil {
		errs = append(errs, "either slope angle or slope length must be set")
	}
	if req.Slope.Angle != nil {
		if a := *req.Slope.Angle; a <= 0 || a >= 90 {
			errs = append(errs, fmt.Sprintf("slope angle must be in (0, 90) degrees (got %g)", a))
		}
	}
	if req.Slope.Length != nil && *req.Slope.Length <= 0 {
		errs = append(errs, fmt.Sprintf("slope length must be positive (got %g)", *req.Slope.Length))
	}

	// Limits: both or neither (the engine derives defaults when neither).
	left, right := req.Slope.LeftLimit, req.Slope.RightLimit
	switch {
	case (left == nil) != (right == nil):
		errs = append(errs, "analysis limits must both be provided or both left empty")
	case left != nil && *left >= *right:
		errs = append(errs, fmt.Sprintf("left analysis limit (%g) must be less than right (%g)", *left, *right))
	}

	if wt := req.Slope.WaterTableDepth; wt != nil && *wt < 0 {
		errs = append(errs, fmt.Sprintf("water table depth cannot be negative (got %g)", *wt))
	}

	if req.Slope.Slices <= 0 {
		errs = append(errs, fmt.Sprintf("slice count must be positive (got %d)", req.Slope.Slices))
	}
	if req.Slope.Iterations <= 0 {
		errs = append(errs, fmt.Sprintf("iteration count must be positive (got %d)", req.Slope.Iterations))
	}

	if len(req.Materials) == 0 {
		return joinWith(errs, domain.ErrNoMaterials.Error())
	}

	var prevDepth float64
	for i, m := range req.Materials {
		if m.UnitWeight <= 0 {
			errs = append(errs, fmt.Sprintf("material %s: unit weight must be positive (got %g)", m.ID, m.UnitWeight))
		}
		if m.FrictionAngle < 0 || m.FrictionAngle >= 90 {
			errs = append(errs, fmt.Sprintf("material %s: friction angle must be in [0, 90) degrees (got %g)", m.ID, m.FrictionAngle))
		}
		if m.Cohesion < 0 {
			errs = append(errs, fmt.Sprintf("material %s: cohesion cannot be negative (got %g)", m.ID, m.Cohesion))
		}
		if m.DepthToBottom <= 0 {
			errs = append(errs, fmt.Sprintf("material %s: depth to bottom must be positive (got %g)", m.ID, m.DepthToBottom))
		}
		// Layers are ordered top to bottom; depths must not decrease.
		if i > 0 && m.DepthToBottom < prevDepth {
			errs = append(errs, fmt.Sprintf("material %s: depth to bottom (%g) is above the previous layer (%g)", m.ID, m.DepthToBottom, prevDepth))
		}
		prevDepth = m.DepthToBottom
	}

	for _, l := range req.Loads {
		switch l.Kind {
		case domain.LoadUDL:
			if l.Length != nil && *l.Length <= 0 {
				errs = append(errs, fmt.Sprintf("load %s: UDL length must be positive or empty for infinite (got %g)", l.ID, *l.Length))
			}
		case domain.LoadLine:
			// No extra structure to check.
		default:
			errs = append(errs, fmt.Sprintf("load %s: unknown kind %q", l.ID, l.Kind))
		}
		if l.Magnitude <= 0 {
			errs = append(errs, fmt.Sprintf("load %s: magnitude must be positive (got %g)", l.ID, l.Magnitude))
		}
	}

	if req.PlotMode == domain.PlotAllPlanes && req.MaxFOS <= 0 {
		errs = append(errs, fmt.Sprintf("max FOS filter must be positive for the all-planes plot (got %g)", req.MaxFOS))
	}

	return joinWith(errs)
}

func joinWith(errs []string, extra ...string) error {
	errs = append(errs, extra...)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid analysis request: %s", strings.Join(errs, "; "))
}
