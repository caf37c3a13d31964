package main

import (
	"fmt"
	"strings"

	"github.com/nambucca-eng/talus"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of talus",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("talus version %s\n", strings.TrimSpace(talus.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
