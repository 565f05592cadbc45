// Package sched is the scheduling core: the four interchangeable
// scheduling policies of spec.md §4.3, the single Kernel type that drives
// the process lifecycle (spec.md §4.1) and the per-tick accounting sweep
// (spec.md §4.4) over the fixed process table, and the syscall-shaped API
// (fork/exit/wait/waitx/kill/set_priority) spec.md §4.5-§4.7 describe.
//
// The simulation advances one tick at a time via Kernel.Tick, called
// either directly (tests, the bench harness) or from a time.Ticker-paced
// loop (the "run" CLI command; the live dashboard only reads snapshots).
// Every process
// body is a Workload: a small state machine driven one Step per tick
// while its slot is RUNNING, with no knowledge of which policy dispatched
// it — exactly the separation spec.md §5 describes between "abstract
// kernel threads" and the scheduler that multiplexes them.
package sched

import (
	"github.com/gokernel/coresched/internal/ptable"
)

// Policy is one of RR, FCFS, PBS or MLFQ. The core depends on this
// interface exclusively; spec.md §4.3's algorithms are spread one per
// file (rr.go, fcfs.go, pbs.go, mlfq.go) rather than branching inside the
// Kernel.
type Policy interface {
	Name() string

	// Admit is invoked once every time a process slot transitions into
	// RUNNABLE: after fork/userinit, and on every wakeup. RR, FCFS and
	// PBS have no side state to update here since Select rescans the
	// table directly; MLFQ uses it to place the process on a queue,
	// preserving its current level across an I/O sleep.
	Admit(t *ptable.Table, slot int, now int64)

	// Select picks the next slot to dispatch among the RUNNABLE
	// processes in t, or reports false if none is runnable. Called once
	// per idle CPU per tick.
	Select(t *ptable.Table, now int64) (int, bool)

	// OnDispatch runs once a selected process has been marked RUNNING,
	// for per-dispatch bookkeeping (RR, PBS and MLFQ count dispatches in
	// TimeSlices; FCFS does nothing here).
	OnDispatch(p *ptable.Process)

	// ShouldPreempt is consulted every tick a process remains RUNNING
	// with no work-driven reason to stop. RR preempts unconditionally
	// (quantum of one tick); FCFS never preempts; PBS preempts only when
	// a strictly better-priority process has become RUNNABLE; MLFQ
	// preempts once the process has consumed its queue's quantum.
	ShouldPreempt(t *ptable.Table, slot int, now int64) bool

	// Requeue runs when a RUNNING process yields back to RUNNABLE,
	// before it becomes eligible for Select again. MLFQ uses it to
	// decide whether to demote the process a queue level.
	Requeue(t *ptable.Table, slot int, now int64)
}
