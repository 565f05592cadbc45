// Package cmd builds the coresched CLI, following the same cobra
// hierarchy the teacher's proctor command tree uses: a root command with
// no behavior of its own, one subcommand per operation, tablewriter for
// tabular output, and go-spew for a verbose debug dump.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "coresched",
	Short: "A teaching-kernel process scheduler, simulated and benchmarked.",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// SetupCommands wires every subcommand onto the root and returns it,
// matching the teacher's SetupCommands/SetupCLI shape.
func SetupCommands() *cobra.Command {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// Execute runs the CLI, exiting non-zero on error the way the teacher's
// main.go does.
func Execute() {
	if err := SetupCommands().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
