package process_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/internal/adapters/engine/process"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/ports"
)

var _ ports.AnalysisEngine = (*process.Engine)(nil)

// shEngine builds an engine that runs an inline shell script as the
// bridge. POSIX only; the bridge protocol itself is platform-neutral.
func shEngine(t *testing.T, script string) *process.Engine {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("inline sh bridge not available on windows")
	}
	return process.NewEngine("/bin/sh", []string{"-c", script})
}

func request() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Slope: domain.NewSlopeConfig(3, domain.Float64(30)),
		Materials: []domain.MaterialLayer{
			{ID: "L1", UnitWeight: 20, FrictionAngle: 45, Cohesion: 2, DepthToBottom: 2},
		},
		PlotMode: domain.PlotBoundary,
		MaxFOS:   2.0,
	}
}

func TestProcess_SuccessfulRun(t *testing.T) {
	plot := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	script := fmt.Sprintf(
		`cat >/dev/null; printf '{"critical_fos": 1.4562, "surfaces": 2000, "plots": {"boundary": "%s"}}'`,
		plot,
	)

	engine := shEngine(t, script)
	result, err := engine.Analyze(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, 1.4562, result.CriticalFOS)
	assert.Equal(t, 2000, result.Surfaces)
	assert.Equal(t, []byte("png-bytes"), result.Plots[domain.PlotBoundary])
}

func TestProcess_RequestIsDeliveredOnStdin(t *testing.T) {
	// The bridge echoes the request's slice count back as the surface
	// count, proving the payload crossed the pipe.
	script := `surfaces=$(grep -o '"slices":[0-9]*' | head -n1 | cut -d: -f2); printf '{"critical_fos": 1.0, "surfaces": %s}' "$surfaces"`

	engine := shEngine(t, script)
	result, err := engine.Analyze(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSlices, result.Surfaces)
}

func TestProcess_DomainErrorFromBridge(t *testing.T) {
	engine := shEngine(t, `cat >/dev/null; printf '{"error": "analysis did not converge"}'`)

	_, err := engine.Analyze(context.Background(), request())
	require.Error(t, err)
	assert.True(t, domain.IsEngineError(err))
	assert.Contains(t, err.Error(), "did not converge")
}

func TestProcess_CrashCapturesStderr(t *testing.T) {
	engine := shEngine(t, `cat >/dev/null; echo "Traceback: boom" >&2; exit 3`)

	_, err := engine.Analyze(context.Background(), request())
	require.Error(t, err)
	assert.True(t, domain.IsEngineError(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestProcess_MalformedResponse(t *testing.T) {
	engine := shEngine(t, `cat >/dev/null; printf 'not json'`)

	_, err := engine.Analyze(context.Background(), request())
	require.Error(t, err)
	assert.False(t, domain.IsEngineError(err))
	assert.Contains(t, err.Error(), "malformed")
}

func TestProcess_ContextDeadlineKillsBridge(t *testing.T) {
	engine := shEngine(t, `sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := engine.Analyze(ctx, request())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcess_MissingCommand(t *testing.T) {
	engine := process.NewEngine("talus-no-such-bridge", nil)

	_, err := engine.Analyze(context.Background(), request())
	require.Error(t, err)
	assert.True(t, domain.IsEngineError(err))
}
