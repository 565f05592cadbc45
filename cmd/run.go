package cmd

import (
	"os"
	"time"

	"github.com/gokernel/coresched/internal/bench"
	"github.com/gokernel/coresched/internal/config"
	"github.com/gokernel/coresched/internal/sched"
	"github.com/gokernel/coresched/ui"
	"github.com/spf13/cobra"
)

var (
	runPolicy  string
	runNPROC   int
	runNCPU    int
	runTicks   int64
	runDashURL string
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fork a small demo workload and run the scheduler for a fixed number of ticks.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.New(config.Config{
			NPROC:  runNPROC,
			NCPU:   runNCPU,
			Policy: config.ParsePolicy(runPolicy),
		})
		k := sched.NewKernel(cfg, log)

		pid, err := k.Fork(-1, "init", nil)
		if err != nil {
			log.WithError(err).Fatal("failed forking init")
		}
		log.WithField("pid", pid).Info("forked init")

		initSlot := 0
		for i, p := range k.Snapshot() {
			if p.PID == pid {
				initSlot = i
			}
		}
		k.Fork(initSlot, "cpu-hog", bench.CPUBound(200))
		k.Fork(initSlot, "io-bound", bench.IOBound(5, 20, 8))

		if runDashURL != "" {
			srv := ui.New(k)
			go srv.ListenAndServe(runDashURL, log)
		}

		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for i := int64(0); i < runTicks; i++ {
			<-ticker.C
			k.Tick()
		}

		procs := k.Snapshot()
		if runVerbose {
			dumpVerbose(os.Stdout, procs)
			return
		}
		renderPsTable(os.Stdout, procs)
	},
}

func init() {
	runCmd.Flags().StringVar(&runPolicy, "policy", "RR", "scheduling policy: RR, FCFS, PBS, MLFQ")
	runCmd.Flags().IntVar(&runNPROC, "nproc", config.DefaultNPROC, "process table size")
	runCmd.Flags().IntVar(&runNCPU, "ncpu", config.DefaultNCPU, "number of simulated CPUs")
	runCmd.Flags().Int64Var(&runTicks, "ticks", 400, "number of ticks to run")
	runCmd.Flags().StringVar(&runDashURL, "dashboard", "", "if set, serve a live dashboard at this address (e.g. :8080)")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "dump full process state with go-spew instead of a ps table")
}
