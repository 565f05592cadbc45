package ptable

import (
	"sync"

	"github.com/gokernel/coresched/internal/config"
	"github.com/gokernel/coresched/internal/kpanic"
	"github.com/sirupsen/logrus"
)

// Table is the fixed-size process table guarded by a single mutex, playing
// the role of xv6's `ptable.lock`. Every field touched by more than one
// goroutine — the slots, the MLFQ queue arena (wired in by internal/sched),
// and the pid counter — lives behind Lock/Unlock.
type Table struct {
	mu      sync.Mutex
	procs   []Process
	nextPID int
	log     *logrus.Logger
}

// New allocates a Table sized per cfg.NPROC, all slots UNUSED.
func New(cfg config.Config, log *logrus.Logger) *Table {
	t := &Table{
		procs:   make([]Process, cfg.NPROC),
		nextPID: 1,
		log:     log,
	}
	for i := range t.procs {
		t.procs[i].reset()
	}
	return t
}

// Lock acquires the table's mutex. Callers hold it across any sequence of
// operations that must appear atomic, mirroring acquire(&ptable.lock).
func (t *Table) Lock() { t.mu.Lock() }

// Unlock releases the table's mutex.
func (t *Table) Unlock() { t.mu.Unlock() }

// Len returns the table's fixed capacity (NPROC).
func (t *Table) Len() int { return len(t.procs) }

// At returns a pointer to the slot at index i. Callers must hold the lock.
func (t *Table) At(i int) *Process { return &t.procs[i] }

// ForEach invokes fn for every slot, in index order. Callers must hold the
// lock; fn must not re-enter Lock/Unlock.
func (t *Table) ForEach(fn func(i int, p *Process)) {
	for i := range t.procs {
		fn(i, &t.procs[i])
	}
}

// Find returns the slot index holding pid, or -1. Callers must hold the
// lock.
func (t *Table) Find(pid int) int {
	for i := range t.procs {
		if t.procs[i].State != UNUSED && t.procs[i].PID == pid {
			return i
		}
	}
	return -1
}

// AllocProc implements the UNUSED -> EMBRYO transition of spec.md §4.1: it
// finds a free slot, assigns a pid, stamps ctime, and initializes counters.
// Returns the slot index and true, or -1 and false if the table is full
// (the "no free slot in table" resource-exhausted case of spec.md §7).
// Callers must hold the lock.
func (t *Table) AllocProc(now int64, name string, parent int) (int, bool) {
	for i := range t.procs {
		if t.procs[i].State == UNUSED {
			t.procs[i].reset()
			t.procs[i].State = EMBRYO
			t.procs[i].PID = t.nextPID
			t.nextPID++
			t.procs[i].Name = name
			t.procs[i].Parent = parent
			t.procs[i].CTime = now
			return i, true
		}
	}
	return -1, false
}

// FreeSlot implements ZOMBIE -> UNUSED: the parent has reaped the child via
// wait/waitx. Callers must hold the lock.
func (t *Table) FreeSlot(i int) {
	if t.procs[i].State != ZOMBIE {
		kpanic.Fatal(t.log, "FreeSlot called on non-ZOMBIE slot", t.procs[i])
	}
	t.procs[i].reset()
}

// FreeEmbryo implements EMBRYO -> UNUSED: allocproc's caller failed to
// finish initializing the slot (no free kernel stack or address space) and
// is abandoning it. Callers must hold the lock.
func (t *Table) FreeEmbryo(i int) {
	if t.procs[i].State != EMBRYO {
		kpanic.Fatal(t.log, "FreeEmbryo called on non-EMBRYO slot", t.procs[i])
	}
	t.procs[i].reset()
}

// SetState validates and performs a state-machine transition, clearing
// Chan whenever the new state is not SLEEPING. Entry into SLEEPING is not
// checked: callers set Chan before moving a process to SLEEPING. Any
// transition not present in spec.md §4.1's table is a fatal
// invariant violation. Callers must hold the lock.
func (t *Table) SetState(i int, to State) {
	p := &t.procs[i]
	from := p.State
	if !validTransition(from, to) {
		kpanic.Fatal(t.log, "illegal process state transition", map[string]any{
			"pid": p.PID, "from": from.String(), "to": to.String(),
		})
	}
	p.State = to
	if to != SLEEPING {
		p.Chan = nil
	}
}

func validTransition(from, to State) bool {
	switch from {
	case UNUSED:
		return to == EMBRYO
	case EMBRYO:
		return to == UNUSED || to == RUNNABLE
	case RUNNABLE:
		return to == RUNNING
	case RUNNING:
		return to == RUNNABLE || to == SLEEPING || to == ZOMBIE
	case SLEEPING:
		return to == RUNNABLE
	case ZOMBIE:
		return false // only FreeSlot may clear a zombie, not SetState
	default:
		return false
	}
}
