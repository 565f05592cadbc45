// Package bench runs the fixed synthetic scenarios of spec.md §8 (S1-S6)
// against a sched.Kernel and persists the results, adapting the teacher's
// gob-plus-xdg process cache (plib.encodeProcessCache/loadProcessesFromCache)
// to cache benchmark reports instead of /proc snapshots.
package bench

import "github.com/gokernel/coresched/internal/sched"

// CPUBound returns a Workload that stays RUNNABLE/RUNNING for exactly
// totalTicks ticks of accumulated RTime before finishing — a pure
// compute-bound process with no I/O.
func CPUBound(totalTicks int64) sched.Workload {
	remaining := totalTicks
	return sched.FuncWorkload(func(self int) sched.Result {
		remaining--
		return sched.Result{Finished: remaining <= 0}
	})
}

// IOBound returns a Workload that alternates cpuBurst ticks of compute
// with a fixed ioWait-tick sleep, repeated for cycles iterations.
func IOBound(cpuBurst, ioWait int64, cycles int) sched.Workload {
	burstLeft := cpuBurst
	cyclesLeft := cycles
	return sched.FuncWorkload(func(self int) sched.Result {
		burstLeft--
		if burstLeft > 0 {
			return sched.Result{}
		}
		cyclesLeft--
		burstLeft = cpuBurst
		if cyclesLeft <= 0 {
			return sched.Result{Finished: true}
		}
		return sched.Result{SleepTicks: ioWait}
	})
}
