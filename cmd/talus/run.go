package main

import (
	"fmt"
	"os"

	"github.com/nambucca-eng/talus/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive analysis session",
	Long: `Starts the interactive session shell. With --session the inputs and
the last result persist across invocations.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" && len(args) > 0 {
			sessionID = args[0]
		}

		opts := cli.RunOptions{
			ConfigPath: configPath,
			SessionID:  sessionID,
		}
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Example, _ = cmd.Flags().GetBool("example")
		opts.Plain, _ = cmd.Flags().GetBool("plain")

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	runCmd.Flags().Bool("fresh", false, "Discard any persisted state for the session first")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")
	runCmd.Flags().Bool("example", false, "Seed empty sessions with the documented example")
	runCmd.Flags().Bool("plain", false, "Disable the banner and markdown styling")

	// Make 'run' the default if no command is provided.
	rootCmd.Run = runCmd.Run
}
