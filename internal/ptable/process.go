// Package ptable is the scheduling core's process table: the fixed-size
// array of process descriptors, the lifecycle state machine, and the
// single spinlock-equivalent mutex that guards both the table and (for
// MLFQ) the queue arena. It is deliberately the most heavily documented
// package in this module, the way the teacher's plib.ProcessStat carries a
// doc comment per procfs field — here every descriptor field is load
// bearing for an invariant in spec.md §3, so each gets one.
package ptable

import "github.com/gokernel/coresched/internal/config"

// State is one of the six lifecycle states a process slot can be in.
type State int

const (
	UNUSED State = iota
	EMBRYO
	SLEEPING
	RUNNABLE
	RUNNING
	ZOMBIE
)

// String renders a State the way ps wants it: lowercase, matching the
// "unused/embryo/sleeping/runable/running/zombie" vocabulary in spec.md §6.
// Note "runable" (one n) is the spec's spelling, carried through verbatim.
func (s State) String() string {
	switch s {
	case UNUSED:
		return "unused"
	case EMBRYO:
		return "embryo"
	case SLEEPING:
		return "sleeping"
	case RUNNABLE:
		return "runable"
	case RUNNING:
		return "running"
	case ZOMBIE:
		return "zombie"
	default:
		return "unknown"
	}
}

// ExecutionContext stands in for the kernel-stack/trapframe/page-directory
// trio (kstack, tf, context, pgdir) that spec.md treats as opaque, owned
// VM/allocator state. The core never interprets its contents; it only
// allocates and frees it.
type ExecutionContext struct {
	KStack []byte
	PGDir  uintptr
	Sz     uint64
}

// Process is one process-table slot. Fields are grouped exactly as
// spec.md §3 groups them: identity, state, execution, accounting, policy.
type Process struct {
	// --- identity ---

	// PID is assigned from a process-global monotonic counter starting at
	// 1. Unique among all non-UNUSED slots (invariant §3).
	PID int
	// Name is a short debug-only label; never interpreted by the core.
	Name string
	// Parent is the slot index of the parent process, or -1 for init.
	Parent int

	// --- state ---

	State State

	// --- execution ---

	Exec *ExecutionContext
	// Chan is the opaque wait-channel key. Non-nil only while SLEEPING
	// (invariant: State == SLEEPING iff Chan != nil).
	Chan any
	// Killed is set by Kill; the process exits on its next return to
	// "user space" (modeled here as the next scheduler dispatch boundary).
	Killed bool

	// --- accounting ---

	CTime   int64 // tick of allocproc
	ETime   int64 // tick of exit; 0 until set
	RTime   int64 // ticks observed RUNNING
	IOTime  int64 // ticks observed SLEEPING
	PSWTime int64 // ticks observed RUNNABLE since last dispatch
	NRun    int64 // number of times dispatched

	// --- policy state ---

	Priority   int // [0,100], lower is better, default 60
	TimeSlices int64
	Queue      int // [0, NQUE) — MLFQ only
	CTicks     int64
	// GotQueue reflects queue membership exactly (invariant, spec.md §3):
	// true while the process sits in an MLFQ queue awaiting dispatch,
	// false from the moment it is popped for dispatch until it is pushed
	// back by Admit/Requeue. MLFQ only.
	GotQueue bool
	// EverQueued is set the first time a process is ever admitted to
	// MLFQ, so a later re-admission (wakeup from sleep, demotion) keeps
	// its earned Queue level instead of resetting to 0. Unlike GotQueue
	// this never goes back to false. MLFQ only.
	EverQueued bool
	TAlloc     int64
	QTicks     [config.NQUE]int64 // lifetime per-queue tick histogram
}

// reset clears a slot back to its UNUSED zero value in place, preserving
// the backing array slot (no reallocation), matching spec.md §9's "arena
// sized to NPROC, no dynamic allocation after boot".
func (p *Process) reset() {
	*p = Process{Parent: -1, Priority: config.DefaultPriority}
}
