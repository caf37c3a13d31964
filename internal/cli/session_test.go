package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/internal/adapters/engine/stub"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/session"
)

func testShell() *session.Shell {
	return session.NewShell(stub.NewEngine())
}

func plainRender(md string) string { return md }

func TestCmdSlope(t *testing.T) {
	shell := testShell()

	require.NoError(t, cmdSlope(shell, []string{"height", "3"}))
	require.NoError(t, cmdSlope(shell, []string{"angle", "30"}))
	require.NoError(t, cmdSlope(shell, []string{"water", "4"}))

	state := shell.Snapshot()
	assert.Equal(t, 3.0, state.Slope.Height)
	require.NotNil(t, state.Slope.Angle)
	assert.Equal(t, 30.0, *state.Slope.Angle)
	require.NotNil(t, state.Slope.WaterTableDepth)

	// '-' clears an optional field.
	require.NoError(t, cmdSlope(shell, []string{"water", "-"}))
	assert.Nil(t, shell.Snapshot().Slope.WaterTableDepth)

	assert.Error(t, cmdSlope(shell, []string{"height", "tall"}))
	assert.Error(t, cmdSlope(shell, []string{"crest", "3"}))
	assert.Error(t, cmdSlope(shell, []string{"height"}))
}

func TestCmdLayerAndLoads(t *testing.T) {
	shell := testShell()

	require.NoError(t, cmdLayer(shell, []string{"add", "20", "45", "2", "2"}))
	require.NoError(t, cmdUDL(shell, []string{"100", "2", "1"}))
	require.NoError(t, cmdUDL(shell, []string{"20", "0"}))
	require.NoError(t, cmdLine(shell, []string{"10", "3"}))

	assert.Len(t, shell.Layers(), 1)
	assert.Len(t, shell.Loads(), 3)

	require.NoError(t, cmdLayer(shell, []string{"rm", "L1"}))
	assert.ErrorIs(t, cmdLayer(shell, []string{"rm", "L1"}), domain.ErrNotFound)
	require.NoError(t, cmdLoad(shell, []string{"rm", "LL1"}))
	assert.Len(t, shell.Loads(), 2)

	assert.Error(t, cmdUDL(shell, []string{"100"}))
	assert.Error(t, cmdLine(shell, []string{"ten", "3"}))
}

func TestCmdRunAndReport(t *testing.T) {
	shell := testShell()
	shell.LoadDefaultExample()

	require.NoError(t, cmdRun(context.Background(), shell, plainRender, nil))
	assert.Equal(t, domain.PhaseResult, shell.Phase())

	require.NoError(t, cmdRun(context.Background(), shell, plainRender, []string{"critical"}))
	assert.Error(t, cmdRun(context.Background(), shell, plainRender, []string{"hologram"}))
}

func TestCmdProject(t *testing.T) {
	shell := testShell()

	require.NoError(t, cmdProject(shell, []string{"name", "Cutting", "7"}))
	require.NoError(t, cmdProject(shell, []string{"engineer", "R.", "Park"}))

	info := shell.Snapshot().Project
	assert.Equal(t, "Cutting 7", info.Name)
	assert.Equal(t, "R. Park", info.Engineer.Name)

	assert.Error(t, cmdProject(shell, []string{"budget", "1"}))
}

func TestDescribeListsInputs(t *testing.T) {
	shell := testShell()
	shell.LoadDefaultExample()

	out := describe(shell)
	assert.Contains(t, out, "height 3 m")
	assert.Contains(t, out, "L1")
	assert.Contains(t, out, "UDL1")
	assert.Contains(t, out, "LL1")
}

func TestParseOptional(t *testing.T) {
	v, err := parseOptional("2.5")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 2.5, *v)

	v, err = parseOptional("-")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseOptional("deep")
	assert.Error(t, err)
}
