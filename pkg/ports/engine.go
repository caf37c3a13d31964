package ports

import (
	"context"

	"github.com/nambucca-eng/talus/pkg/domain"
)

// AnalysisEngine is the external slope-stability solver. One call per
// run; the engine is synchronous and stateless from the shell's point of
// view. Implementations must honor ctx cancellation and deadlines.
//
// Domain failures (non-convergence, invalid geometry) come back as
// *domain.EngineError so the shell can surface them without tearing the
// session down.
type AnalysisEngine interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// EngineFunc adapts a plain function to AnalysisEngine, mostly for tests.
type EngineFunc func(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)

// Analyze implements AnalysisEngine.
func (f EngineFunc) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	return f(ctx, req)
}
