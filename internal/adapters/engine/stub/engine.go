// Package stub provides an offline AnalysisEngine for demos and tests.
// It fabricates a plausible factor of safety from the request instead of
// searching failure surfaces, and renders placeholder PNG artifacts, so
// the whole shell can be exercised without the external solver.
package stub

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/nambucca-eng/talus/pkg/domain"
)

// Engine implements ports.AnalysisEngine without an external solver.
type Engine struct{}

// NewEngine creates a stub engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze fabricates a deterministic result. The FOS leans on the
// friction of the top stratum against the face angle, nudged by cohesion
// and surcharge, which keeps relative comparisons sensible in demos.
func (e *Engine) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(req.Materials) == 0 {
		return nil, &domain.EngineError{Msg: "no materials defined"}
	}

	angle := 30.0
	if req.Slope.Angle != nil {
		angle = *req.Slope.Angle
	} else if req.Slope.Length != nil && *req.Slope.Length > 0 {
		angle = math.Atan(req.Slope.Height / *req.Slope.Length) * 180 / math.Pi
	}
	if angle <= 0 || angle >= 90 {
		return nil, &domain.EngineError{Msg: "invalid slope geometry"}
	}

	top := req.Materials[0]
	tanBeta := math.Tan(angle * math.Pi / 180)
	tanPhi := math.Tan(top.FrictionAngle * math.Pi / 180)

	fos := tanPhi / tanBeta
	fos += top.Cohesion / (top.UnitWeight * req.Slope.Height * tanBeta)

	var surcharge float64
	for _, l := range req.Loads {
		surcharge += l.Magnitude
	}
	if surcharge > 0 {
		fos /= 1 + surcharge/(top.UnitWeight*req.Slope.Height*10)
	}
	if req.Slope.WaterTableDepth != nil && *req.Slope.WaterTableDepth < req.Slope.Height {
		fos *= 0.85
	}

	result := &domain.AnalysisResult{
		CriticalFOS: round4(fos),
		Surfaces:    req.Slope.Iterations,
		Plots: map[domain.PlotMode][]byte{
			req.PlotMode: placeholderPNG(),
		},
	}
	return result, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// placeholderPNG encodes a small solid image so display surfaces have
// real bytes to pass through.
func placeholderPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
