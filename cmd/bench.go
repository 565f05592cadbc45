package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gokernel/coresched/internal/bench"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var benchSave bool

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the fixed S1-S6 scenarios and report tick counts to completion.",
	Run: func(cmd *cobra.Command, args []string) {
		reports := make([]bench.Report, 0, len(bench.Scenarios))
		for _, s := range bench.Scenarios {
			reports = append(reports, bench.Run(s, log))
		}

		rows := make([][]string, 0, len(reports))
		for _, r := range reports {
			rows = append(rows, []string{
				r.Scenario,
				r.Policy,
				r.Description,
				strconv.FormatInt(r.Ticks, 10),
				strconv.FormatBool(r.Completed),
			})
		}
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"SCENARIO", "POLICY", "DESCRIPTION", "TICKS", "COMPLETED"})
		table.AppendBulk(rows)
		table.Render()

		if benchSave {
			if err := bench.SaveReports(reports); err != nil {
				log.WithError(err).Warn("failed caching bench reports")
				return
			}
			path, _ := bench.CacheDir()
			fmt.Fprintf(os.Stdout, "reports cached at %s\n", path)
		}
	},
}

func init() {
	benchCmd.Flags().BoolVar(&benchSave, "save", false, "cache the reports to the XDG cache directory")
}
