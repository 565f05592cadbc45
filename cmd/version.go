package cmd

import (
	"fmt"

	"github.com/gokernel/coresched/internal/host"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; defaults to "dev" for local
// builds, matching the teacher's pattern of an overridable package var.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the coresched version and host facts.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("coresched %s\n", Version)
		facts, err := host.NewLinuxReader().GetFacts()
		if err != nil {
			log.WithError(err).Warn("failed reading host facts")
			return
		}
		fmt.Printf("host: %s %s, kernel %s, %s, %d logical CPUs\n",
			facts.OS.Name, facts.OS.Version, facts.KernelRelease, facts.Architecture, facts.NumCPU)
	},
}
