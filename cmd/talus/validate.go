package main

import (
	"fmt"
	"os"

	"github.com/nambucca-eng/talus/internal/config"
	"github.com/nambucca-eng/talus/internal/validator"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [session-id]",
	Short: "Check the configuration and a session's inputs",
	Long: `Validates the config file, and with a session ID also checks whether
that session's current inputs would be accepted by a run.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	manager, cleanup := getManager(cmd)
	defer cleanup()

	state, err := manager.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	return validator.ValidateRequest(domain.AnalysisRequest{
		Slope:     state.Slope,
		Materials: state.Layers,
		Loads:     state.Loads,
		PlotMode:  domain.PlotBoundary,
		MaxFOS:    cfg.MaxFOS,
	})
}
