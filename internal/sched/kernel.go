package sched

import (
	"github.com/gokernel/coresched/internal/clock"
	"github.com/gokernel/coresched/internal/config"
	"github.com/gokernel/coresched/internal/cpu"
	"github.com/gokernel/coresched/internal/kpanic"
	"github.com/gokernel/coresched/internal/mlfq"
	"github.com/gokernel/coresched/internal/ptable"
	"github.com/gokernel/coresched/internal/vm"
	"github.com/sirupsen/logrus"
)

// waitChan is the Chan key a process sleeps on while blocked in Wait or
// Waitx: it sleeps on its own slot index, exactly as xv6's wait() sleeps
// on curproc.
type waitChan int

// timedWake is a pending SleepFor wakeup, checked by the accounting sweep
// every tick.
type timedWake struct {
	at   int64
	key  any
	slot int
}

// Kernel owns the process table, the CPU registry, the tick source, the
// active Policy and the VM/allocator collaborators, and drives the
// lifecycle state machine of spec.md §4.1 plus the per-tick accounting
// sweep of spec.md §4.4. It is the single entry point cmd, ui and bench
// all build on.
type Kernel struct {
	cfg       config.Config
	table     *ptable.Table
	cpus      *cpu.Registry
	clock     *clock.Clock
	policy    Policy
	vmMgr     vm.Manager
	alloc     vm.Allocator
	log       *logrus.Logger
	workloads []Workload
	timers    []timedWake
	initSlot  int
}

// NewKernel builds a Kernel from cfg (defaulted via config.New) wired to
// an in-memory fake VM layer and allocator — the real kernel facilities
// spec.md §6 puts out of scope.
func NewKernel(cfg config.Config, log *logrus.Logger) *Kernel {
	cfg = config.New(cfg)
	table := ptable.New(cfg, log)

	var policy Policy
	switch cfg.Policy {
	case config.FCFS:
		policy = NewFCFS()
	case config.PBS:
		policy = NewPBS()
	case config.MLFQ:
		policy = NewMLFQ(mlfq.NewArena(cfg.NPROC, config.NQUE, log), cfg.AgeThresh)
	default:
		policy = NewRR()
	}

	k := &Kernel{
		cfg:       cfg,
		table:     table,
		cpus:      cpu.NewRegistry(cfg.NCPU),
		clock:     clock.New(),
		policy:    policy,
		vmMgr:     vm.NewFakeManager(),
		alloc:     vm.NewFakeAllocator(),
		log:       log,
		workloads: make([]Workload, cfg.NPROC),
		initSlot:  -1,
	}
	k.clock.Register(k.accountingHook)
	return k
}

// Config returns the (defaulted) configuration this Kernel was built
// with.
func (k *Kernel) Config() config.Config { return k.cfg }

// Clock returns the tick source, for callers that want to drive it
// directly (tests) or wrap it in a time.Ticker (the CLI).
func (k *Kernel) Clock() *clock.Clock { return k.clock }

// PolicyName returns the active policy's name, for ps/CLI headers.
func (k *Kernel) PolicyName() string { return k.policy.Name() }

// Fork implements spec.md §4.5's allocproc+fork path. parent is -1 for
// the first ("init") process. w is the workload driving the new slot;
// it may be nil for slots a test manipulates directly via Yield/Exit.
func (k *Kernel) Fork(parent int, name string, w Workload) (int, error) {
	k.table.Lock()
	defer k.table.Unlock()

	now := k.clock.Now()
	slot, ok := k.table.AllocProc(now, name, parent)
	if !ok {
		return -1, ErrNoFreeProc
	}

	stack, err := k.alloc.AllocStack()
	if err != nil {
		k.table.FreeEmbryo(slot)
		return -1, ErrNoKStack
	}

	var pgdir uintptr
	var sz uint64
	if parent == -1 {
		pgdir, err = k.vmMgr.SetupKVM()
		if err == nil {
			err = k.vmMgr.InitUVM(pgdir, []byte(name))
			sz = uint64(len(name))
		}
	} else {
		pp := k.table.At(parent)
		pgdir, err = k.vmMgr.CopyUVM(pp.Exec.PGDir, pp.Exec.Sz)
		sz = pp.Exec.Sz
	}
	if err != nil {
		k.alloc.FreeStack(stack)
		k.table.FreeEmbryo(slot)
		return -1, ErrNoMemory
	}

	pr := k.table.At(slot)
	pr.Exec = &ptable.ExecutionContext{KStack: stack, PGDir: pgdir, Sz: sz}
	k.table.SetState(slot, ptable.RUNNABLE)
	k.policy.Admit(k.table, slot, now)
	k.workloads[slot] = w

	if parent == -1 {
		k.initSlot = slot
	}
	return pr.PID, nil
}

// GetPid returns the pid of the process in slot self.
func (k *Kernel) GetPid(self int) int {
	k.table.Lock()
	defer k.table.Unlock()
	return k.table.At(self).PID
}

// SetPriority implements spec.md §4.7's set_priority: it reassigns the
// PBS priority of pid and returns the priority it previously held.
func (k *Kernel) SetPriority(pid, newPriority int) (int, error) {
	if newPriority < config.MinPriority || newPriority > config.MaxPriority {
		return -1, ErrInvalidPriority
	}
	k.table.Lock()
	defer k.table.Unlock()
	slot := k.table.Find(pid)
	if slot == -1 {
		return -1, ErrNoSuchProc
	}
	pr := k.table.At(slot)
	old := pr.Priority
	pr.Priority = newPriority
	return old, nil
}

// Kill marks pid for termination. A SLEEPING process is woken so it can
// observe the kill on its next dispatch and exit, matching spec.md §4.6's
// "exits on its next return to user space".
func (k *Kernel) Kill(pid int) error {
	k.table.Lock()
	defer k.table.Unlock()
	slot := k.table.Find(pid)
	if slot == -1 {
		return ErrNoSuchProc
	}
	pr := k.table.At(slot)
	pr.Killed = true
	if pr.State == ptable.SLEEPING {
		k.table.SetState(slot, ptable.RUNNABLE)
		k.policy.Admit(k.table, slot, k.clock.Now())
	}
	return nil
}

// Wait implements spec.md §4.6's wait: one non-blocking attempt to reap a
// zombie child of self. If self has children but none are zombies yet,
// self is put to SLEEPING on its own wait channel and will be retried the
// next time it is dispatched and calls Wait again — the step-engine's
// analog of wait()'s blocking sleep loop. ok reports whether a child was
// reaped; hasChildren reports whether self has any children at all (an
// ECHILD-equivalent when false).
func (k *Kernel) Wait(self int) (pid int, ok, hasChildren bool) {
	k.table.Lock()
	defer k.table.Unlock()
	return k.waitLocked(self, false)
}

// Waitx implements spec.md §4.6's waitx, additionally returning the
// reaped child's accumulated run and wait time.
func (k *Kernel) Waitx(self int) (pid int, rtime, wtime int64, ok, hasChildren bool) {
	k.table.Lock()
	defer k.table.Unlock()
	pid, rtime, wtime, ok, hasChildren = k.waitxLocked(self)
	return
}

func (k *Kernel) waitLocked(self int, _ bool) (int, bool, bool) {
	pid, _, _, ok, hasChildren := k.waitxLocked(self)
	return pid, ok, hasChildren
}

func (k *Kernel) waitxLocked(self int) (pid int, rtime, wtime int64, ok, hasChildren bool) {
	for i := 0; i < k.table.Len(); i++ {
		c := k.table.At(i)
		if c.State == ptable.UNUSED || c.Parent != self {
			continue
		}
		hasChildren = true
		if c.State != ptable.ZOMBIE {
			continue
		}
		pid = c.PID
		rtime = c.RTime
		total := c.ETime - c.CTime
		wtime = total - c.RTime - c.IOTime
		if wtime < 0 {
			wtime = 0
		}
		k.vmMgr.FreeVM(c.Exec.PGDir)
		k.alloc.FreeStack(c.Exec.KStack)
		k.table.FreeSlot(i)
		k.workloads[i] = nil
		return pid, rtime, wtime, true, true
	}
	if !hasChildren {
		return -1, 0, 0, false, false
	}
	k.table.At(self).Chan = waitChan(self)
	k.table.SetState(self, ptable.SLEEPING)
	return -1, 0, 0, false, true
}

// Snapshot returns a consistent copy of every process slot, for ps/ui
// rendering without holding the table lock for the duration of an HTTP
// response or a tablewriter render.
func (k *Kernel) Snapshot() []ptable.Process {
	k.table.Lock()
	defer k.table.Unlock()
	out := make([]ptable.Process, k.table.Len())
	for i := 0; i < k.table.Len(); i++ {
		out[i] = *k.table.At(i)
	}
	return out
}

// --- internal, lock-already-held helpers shared between Tick and the
// public single-shot wrappers below ---

func (k *Kernel) exitLocked(self int) {
	if self == k.initSlot {
		kpanic.Fatal(k.log, "init process exiting", k.table.At(self))
	}
	pr := k.table.At(self)
	now := k.clock.Now()
	pr.ETime = now
	k.table.ForEach(func(i int, c *ptable.Process) {
		if c.State != ptable.UNUSED && c.Parent == self {
			c.Parent = k.initSlot
			if c.State == ptable.ZOMBIE && k.initSlot != -1 {
				k.wakeupLocked(waitChan(k.initSlot))
			}
		}
	})
	k.table.SetState(self, ptable.ZOMBIE)
	k.wakeupLocked(waitChan(pr.Parent))
}

func (k *Kernel) yieldLocked(self int, now int64) {
	k.table.SetState(self, ptable.RUNNABLE)
	k.policy.Requeue(k.table, self, now)
}

func (k *Kernel) sleepForLocked(self int, ticks int64) {
	now := k.clock.Now()
	key := new(int)
	pr := k.table.At(self)
	pr.Chan = key
	k.table.SetState(self, ptable.SLEEPING)
	k.timers = append(k.timers, timedWake{at: now + ticks, key: key, slot: self})
}

func (k *Kernel) wakeupLocked(key any) {
	now := k.clock.Now()
	k.table.ForEach(func(i int, pr *ptable.Process) {
		if pr.State == ptable.SLEEPING && pr.Chan == key {
			k.table.SetState(i, ptable.RUNNABLE)
			k.policy.Admit(k.table, i, now)
		}
	})
}

// Wakeup implements spec.md §4.6's wakeup: every process sleeping on key
// becomes RUNNABLE.
func (k *Kernel) Wakeup(key any) {
	k.table.Lock()
	defer k.table.Unlock()
	k.wakeupLocked(key)
}

// Exit is the public, single-shot form of exitLocked, for callers driving
// a process outside of Tick (tests, a CLI "kill -9 then reap" path).
func (k *Kernel) Exit(self int) {
	k.table.Lock()
	defer k.table.Unlock()
	k.exitLocked(self)
}

// Yield is the public, single-shot form of yieldLocked.
func (k *Kernel) Yield(self int) {
	k.table.Lock()
	defer k.table.Unlock()
	k.yieldLocked(self, k.clock.Now())
}

// SleepFor is the public, single-shot form of sleepForLocked: self blocks
// for exactly ticks ticks, modeling an I/O wait.
func (k *Kernel) SleepFor(self int, ticks int64) {
	k.table.Lock()
	defer k.table.Unlock()
	k.sleepForLocked(self, ticks)
}
