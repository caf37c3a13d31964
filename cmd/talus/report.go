package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nambucca-eng/talus/internal/report"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <session-id> [file]",
	Short: "Render the report for a completed session",
	Long:  `Renders the markdown report of the session's last run, to stdout or a file.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		manager, cleanup := getManager(cmd)
		defer cleanup()

		state, err := manager.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		md, err := report.Build(state, time.Now())
		if err != nil {
			fmt.Printf("Error building report: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 2 {
			if err := os.WriteFile(args[1], []byte(md), 0644); err != nil {
				fmt.Printf("Error writing report: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote report to %s\n", args[1])
			return
		}
		fmt.Print(md)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
