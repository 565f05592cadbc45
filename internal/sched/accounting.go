package sched

import (
	"github.com/gokernel/coresched/internal/config"
	"github.com/gokernel/coresched/internal/ptable"
)

// accountingHook is spec.md §4.4's per-tick accounting sweep, registered
// once with the Clock at construction. It runs under the table lock, for
// every non-UNUSED slot: RUNNING accrues rtime and the MLFQ per-queue
// tick histogram, SLEEPING accrues iotime, RUNNABLE accrues ps_wtime. It
// also resolves any SleepFor timers that have come due.
func (k *Kernel) accountingHook(now int64) {
	k.table.Lock()
	defer k.table.Unlock()

	k.table.ForEach(func(i int, pr *ptable.Process) {
		switch pr.State {
		case ptable.RUNNING:
			pr.RTime++
			pr.CTicks++
			if k.cfg.Policy == config.MLFQ {
				pr.QTicks[pr.Queue]++
			}
		case ptable.SLEEPING:
			pr.IOTime++
		case ptable.RUNNABLE:
			pr.PSWTime++
		}
	})

	if len(k.timers) == 0 {
		return
	}
	remaining := k.timers[:0]
	for _, tw := range k.timers {
		if tw.at > now {
			remaining = append(remaining, tw)
			continue
		}
		pr := k.table.At(tw.slot)
		if pr.State == ptable.SLEEPING && pr.Chan == tw.key {
			k.table.SetState(tw.slot, ptable.RUNNABLE)
			k.policy.Admit(k.table, tw.slot, now)
		}
	}
	k.timers = remaining
}

// Tick advances the clock by one (running the accounting sweep above),
// then steps whichever process is RUNNING on each CPU, applies the
// result, and dispatches onto any CPU left idle. It returns the new tick
// value.
func (k *Kernel) Tick() int64 {
	now := k.clock.Tick()

	type pending struct {
		cpuIdx, slot int
		killed       bool
		res          Result
	}

	k.table.Lock()
	work := make([]pending, 0, k.cpus.Len())
	for i := 0; i < k.cpus.Len(); i++ {
		slot := k.cpus.At(i).Proc
		if slot == -1 {
			continue
		}
		work = append(work, pending{cpuIdx: i, slot: slot, killed: k.table.At(slot).Killed})
	}
	k.table.Unlock()

	// Workloads are stepped with no lock held: Workload.Step must not
	// call back into the Kernel, so this is race-free even though other
	// CPUs' dispatch bookkeeping may run concurrently with it below.
	for idx := range work {
		if work[idx].killed {
			continue
		}
		if w := k.workloads[work[idx].slot]; w != nil {
			work[idx].res = w.Step(work[idx].slot)
		}
	}

	k.table.Lock()
	for _, w := range work {
		switch {
		case w.killed, w.res.Finished:
			k.exitLocked(w.slot)
		case w.res.SleepTicks > 0:
			k.sleepForLocked(w.slot, w.res.SleepTicks)
		default:
			if k.policy.ShouldPreempt(k.table, w.slot, now) {
				k.yieldLocked(w.slot, now)
			}
		}
		if k.table.At(w.slot).State != ptable.RUNNING {
			k.cpus.At(w.cpuIdx).Proc = -1
		}
	}

	for i := 0; i < k.cpus.Len(); i++ {
		if k.cpus.At(i).Proc != -1 {
			continue
		}
		if slot, ok := k.policy.Select(k.table, now); ok {
			k.dispatchLocked(i, slot, now)
		}
	}
	k.table.Unlock()

	return now
}

// dispatchLocked marks slot RUNNING on cpuIdx, the scheduler half of
// spec.md §4.2's dispatch contract (acquire table, pick, mark RUNNING,
// hand off). Callers must hold the table lock.
func (k *Kernel) dispatchLocked(cpuIdx, slot int, now int64) {
	pr := k.table.At(slot)
	k.table.SetState(slot, ptable.RUNNING)
	pr.NRun++
	pr.PSWTime = 0
	pr.CTicks = 0
	k.policy.OnDispatch(pr)
	k.cpus.At(cpuIdx).Proc = slot
}
