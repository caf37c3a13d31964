// Package process adapts an external solver bridge into the
// AnalysisEngine port. The bridge is any executable that reads one JSON
// request on stdin and writes one JSON response on stdout; the reference
// bridge wraps the PySlope library.
package process

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/nambucca-eng/talus/internal/logging"
	"github.com/nambucca-eng/talus/pkg/domain"
)

// Engine runs the configured bridge command once per analysis.
type Engine struct {
	command string
	args    []string
	baseDir string
	logger  *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithBaseDir sets the working directory for the bridge process.
func WithBaseDir(dir string) Option {
	return func(e *Engine) { e.baseDir = dir }
}

// WithLogger sets a structured logger for bridge invocations.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine that executes command with args.
func NewEngine(command string, args []string, opts ...Option) *Engine {
	e := &Engine{
		command: command,
		args:    args,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// response is the bridge wire format. Plot bytes travel base64-encoded
// per mode; a non-empty error field is a domain failure.
type response struct {
	CriticalFOS float64           `json:"critical_fos"`
	Surfaces    int               `json:"surfaces"`
	Plots       map[string]string `json:"plots,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Analyze implements ports.AnalysisEngine. The context deadline kills the
// bridge process; stderr is captured into the returned error.
func (e *Engine) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Dir = e.baseDir
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("invoking solver bridge", "command", e.command)

	if err := cmd.Run(); err != nil {
		// Cancellation and deadline beat any exit-status noise.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domain.EngineError{Msg: bridgeFailure(err, stderr.String())}
	}

	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("bridge returned malformed response: %w", err)
	}

	if resp.Error != "" {
		return nil, &domain.EngineError{Msg: resp.Error}
	}

	result := &domain.AnalysisResult{
		CriticalFOS: resp.CriticalFOS,
		Surfaces:    resp.Surfaces,
	}

	if len(resp.Plots) > 0 {
		result.Plots = make(map[domain.PlotMode][]byte, len(resp.Plots))
		for mode, encoded := range resp.Plots {
			data, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("bridge returned malformed %s plot: %w", mode, err)
			}
			result.Plots[domain.PlotMode(mode)] = data
		}
	}

	return result, nil
}

func bridgeFailure(err error, stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return err.Error()
	}
	// Keep the tail: python tracebacks put the message last.
	const maxStderr = 512
	if len(stderr) > maxStderr {
		stderr = "..." + stderr[len(stderr)-maxStderr:]
	}
	return fmt.Sprintf("%v: %s", err, stderr)
}
