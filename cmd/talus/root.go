package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talus",
	Short: "Talus is a session shell for slope stability analysis",
	Long: `Talus keeps the inputs of a slope stability session (geometry,
material layers, applied loads), drives an external Bishop's-method
engine, and retains the factor of safety and plot artifacts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (default talus.yaml)")
}
