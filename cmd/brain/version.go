package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	brain "github.com/jnalv414/my-second-brain"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of brain",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brain version %s\n", strings.TrimSpace(brain.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
