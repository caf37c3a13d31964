// Package cli implements the interactive session mode and the shared
// wiring used by the talus commands.
package cli

import (
	"context"
	"fmt"

	"github.com/nambucca-eng/talus"
	"github.com/nambucca-eng/talus/internal/config"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ConfigPath string
	SessionID  string
	Fresh      bool
	Debug      bool
	Example    bool
	Plain      bool // Skip banner and markdown styling
}

// Execute handles the 'run' command logic.
func Execute(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.Example {
		cfg.Example = true
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := ResetSession(cfg, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	return RunSession(cfg, opts)
}

// ResetSession clears the persisted data for the given session ID.
func ResetSession(cfg *config.Config, sessionID string) error {
	manager, cleanup, err := talus.NewManager(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return manager.Delete(context.Background(), sessionID)
}
