package bench

import (
	"fmt"

	"github.com/gokernel/coresched/internal/config"
	"github.com/gokernel/coresched/internal/ptable"
	"github.com/gokernel/coresched/internal/sched"
	"github.com/sirupsen/logrus"
)

// Scenario is one of the six fixed end-to-end workloads spec.md §8
// defines to exercise the scheduling core. Unlike a Workload (which must
// never call back into the Kernel, per sched.Workload's doc comment),
// Spawn and Sample run outside of Tick's step phase and may freely drive
// the Kernel's public API — Fork, SetPriority, Waitx — the way the "init"
// side of a real scenario would.
type Scenario struct {
	Name        string
	Description string
	Policy      config.Policy
	// NCPU and AgeThresh override the Kernel's defaults for scenarios
	// whose assertions depend on single-CPU determinism or a tighter
	// aging window than config.AgeThresh. Zero means "use the default."
	NCPU      int
	AgeThresh int
	// Spawn is called once against a fresh Kernel, before the first
	// Tick, to fork every process the scenario starts with.
	Spawn func(k *sched.Kernel)
	// Sample, if set, runs after every completed Tick and may inspect or
	// drive the Kernel further (staggered forks, a parent's set_priority
	// call partway through, polling Waitx) — the orchestration a real
	// scenario's "init" or "parent" process would perform over time.
	Sample func(tick int64, k *sched.Kernel)
	// Verify, if set, checks the scenario's spec.md §8 assertion against
	// the finished Report (and whatever Sample closed over). Consulted
	// by scenario_test.go, not by Run itself.
	Verify func(Report) error
	// Ticks bounds how long the scenario is allowed to run before Run
	// gives up and reports whatever is left outstanding.
	Ticks int64
}

// dormant returns a Workload that, the moment it is first dispatched,
// requests a sleep far longer than any scenario's tick budget — a stand-
// in for a parent process that has finished setting up its children and
// is now blocked in a wait() loop of its own, off the CPU for good.
func dormant() sched.Workload {
	return sched.FuncWorkload(func(self int) sched.Result {
		return sched.Result{SleepTicks: 1 << 30}
	})
}

// Scenarios is the fixed S1-S6 roster, one per end-to-end scenario
// spec.md §8 defines.
var Scenarios = []Scenario{
	scenarioS1(),
	scenarioS2(),
	scenarioS3(),
	scenarioS4(),
	scenarioS5(),
	scenarioS6(),
}

// scenarioS1 is spec.md §8's S1 (RR fairness): three CPU-bound children
// under RR with identical work; each child's rtime should land within
// 10% of every other's.
func scenarioS1() Scenario {
	const work = 300
	return Scenario{
		Name:        "S1",
		Description: "three CPU-bound children under RR finish with rtimes within 10% of each other",
		Policy:      config.RR,
		NCPU:        1,
		Ticks:       10 * work,
		Spawn: func(k *sched.Kernel) {
			k.Fork(-1, "init", nil)
			init := initSlot(k)
			k.Fork(init, "a", CPUBound(work))
			k.Fork(init, "b", CPUBound(work))
			k.Fork(init, "c", CPUBound(work))
		},
		Verify: func(r Report) error {
			var rtimes []int64
			for _, p := range r.Processes {
				if p.Name == "a" || p.Name == "b" || p.Name == "c" {
					rtimes = append(rtimes, p.RTime)
				}
			}
			if len(rtimes) != 3 {
				return fmt.Errorf("expected 3 children in the report, got %d", len(rtimes))
			}
			min, max := rtimes[0], rtimes[0]
			for _, rt := range rtimes[1:] {
				if rt < min {
					min = rt
				}
				if rt > max {
					max = rt
				}
			}
			if min == 0 || float64(max-min)/float64(min) > 0.10 {
				return fmt.Errorf("rtimes not within 10%% of each other: %v", rtimes)
			}
			return nil
		},
	}
}

// scenarioS2 is spec.md §8's S2 (FCFS ordering): three children forked at
// ticks 10, 20 and 30; under FCFS on one CPU each must run to completion
// before the next is even admitted.
func scenarioS2() Scenario {
	return Scenario{
		Name:        "S2",
		Description: "three children forked at ticks 10/20/30 run to completion in admission order under FCFS",
		Policy:      config.FCFS,
		NCPU:        1,
		Ticks:       200,
		Spawn: func(k *sched.Kernel) {
			k.Fork(-1, "init", dormant())
		},
		Sample: func(tick int64, k *sched.Kernel) {
			switch tick {
			case 10:
				k.Fork(initSlot(k), "child1", CPUBound(5))
			case 20:
				k.Fork(initSlot(k), "child2", CPUBound(5))
			case 30:
				k.Fork(initSlot(k), "child3", CPUBound(5))
			}
		},
		Verify: func(r Report) error {
			byName := map[string]*ptable.Process{}
			for i := range r.Processes {
				byName[r.Processes[i].Name] = &r.Processes[i]
			}
			c1, c2, c3 := byName["child1"], byName["child2"], byName["child3"]
			if c1 == nil || c2 == nil || c3 == nil {
				return fmt.Errorf("missing a child in the report")
			}
			if !(c1.CTime < c2.CTime && c2.CTime < c3.CTime) {
				return fmt.Errorf("admission order violated: ctimes %d, %d, %d", c1.CTime, c2.CTime, c3.CTime)
			}
			if c1.ETime > c2.CTime || c2.ETime > c3.CTime {
				return fmt.Errorf("children overlapped: etimes %d/%d vs ctimes %d/%d", c1.ETime, c2.ETime, c2.CTime, c3.CTime)
			}
			return nil
		},
	}
}

// scenarioS3 is spec.md §8's S3 (PBS pre-emption): a CPU-bound A is
// running when the parent raises B's priority while B still sits
// RUNNABLE; A must yield immediately and B must be the very next process
// dispatched.
func scenarioS3() Scenario {
	var dispatchLog []string
	var bPID int
	var prioritySet bool

	return Scenario{
		Name:        "S3",
		Description: "raising a waiting process's PBS priority forces the running process to yield to it immediately",
		Policy:      config.PBS,
		NCPU:        1,
		Ticks:       100,
		Spawn: func(k *sched.Kernel) {
			dispatchLog = nil
			prioritySet = false
			k.Fork(-1, "init", dormant())
			init := initSlot(k)

			remaining := int64(20)
			aPID, _ := k.Fork(init, "a", sched.FuncWorkload(func(self int) sched.Result {
				dispatchLog = append(dispatchLog, "a")
				remaining--
				return sched.Result{Finished: remaining <= 0}
			}))
			k.SetPriority(aPID, 50)

			bPID, _ = k.Fork(init, "b", sched.FuncWorkload(func(self int) sched.Result {
				dispatchLog = append(dispatchLog, "b")
				return sched.Result{Finished: true}
			}))
		},
		Sample: func(tick int64, k *sched.Kernel) {
			if !prioritySet && tick >= 5 {
				k.SetPriority(bPID, 20)
				prioritySet = true
			}
		},
		Verify: func(r Report) error {
			idx := -1
			for i, d := range dispatchLog {
				if d == "b" {
					idx = i
					break
				}
			}
			if idx <= 0 {
				return fmt.Errorf("expected b dispatched after at least one run of a, got %v", dispatchLog)
			}
			if dispatchLog[idx-1] != "a" {
				return fmt.Errorf("expected b to run immediately after a yielded, got %v", dispatchLog)
			}
			return nil
		},
	}
}

// scenarioS4 is spec.md §8's S4 (MLFQ demotion): a purely CPU-bound child
// starting in queue 0 is progressively demoted through every level,
// accumulating at least 2^i ticks of q_ticks[i] before leaving each one.
func scenarioS4() Scenario {
	return Scenario{
		Name:        "S4",
		Description: "a long-running MLFQ process is demoted through queues 0-4, each accumulating at least 2^i ticks",
		Policy:      config.MLFQ,
		NCPU:        1,
		Ticks:       2000,
		Spawn: func(k *sched.Kernel) {
			k.Fork(-1, "init", dormant())
			k.Fork(initSlot(k), "cpu-hog", CPUBound(1700))
		},
		Verify: func(r Report) error {
			for _, p := range r.Processes {
				if p.Name != "cpu-hog" {
					continue
				}
				for q := 0; q < config.NQUE-1; q++ {
					if p.QTicks[q] < int64(1)<<uint(q) {
						return fmt.Errorf("q_ticks[%d] = %d, want >= %d before demotion", q, p.QTicks[q], int64(1)<<uint(q))
					}
				}
				return nil
			}
			return fmt.Errorf("cpu-hog missing from report")
		},
	}
}

// scenarioS5 is spec.md §8's S5 (MLFQ aging): a process aged into queue 4
// behind a CPU-bound competitor must be promoted to queue 3 within
// AGE_THRESH ticks of its last dispatch.
func scenarioS5() Scenario {
	const ageThresh = 5
	var victimPID int
	var enteredQ4 int64 = -1
	var promotedFromQ4 int64 = -1

	return Scenario{
		Name:        "S5",
		Description: "a process aged in queue 4 behind a CPU-bound hog is promoted to queue 3 within AGE_THRESH ticks",
		Policy:      config.MLFQ,
		NCPU:        1,
		AgeThresh:   ageThresh,
		Ticks:       2000,
		Spawn: func(k *sched.Kernel) {
			enteredQ4, promotedFromQ4 = -1, -1
			k.Fork(-1, "init", dormant())
			init := initSlot(k)
			k.Fork(init, "hog", CPUBound(1800))
			victimPID, _ = k.Fork(init, "victim", CPUBound(20))
		},
		Sample: func(tick int64, k *sched.Kernel) {
			snap := k.Snapshot()
			slot := -1
			for i := range snap {
				if snap[i].PID == victimPID {
					slot = i
					break
				}
			}
			if slot == -1 {
				return
			}
			q := snap[slot].Queue
			if q == 4 && enteredQ4 == -1 {
				enteredQ4 = tick
			}
			if enteredQ4 != -1 && promotedFromQ4 == -1 && q < 4 {
				promotedFromQ4 = tick
			}
		},
		Verify: func(r Report) error {
			if enteredQ4 == -1 {
				return fmt.Errorf("victim never reached queue 4")
			}
			if promotedFromQ4 == -1 {
				return fmt.Errorf("victim never promoted out of queue 4")
			}
			// The aging sweep only runs when Select is called, i.e. when
			// the CPU actually frees up — so the observed gap can exceed
			// AGE_THRESH by up to one full top-level quantum (2^(NQUE-1))
			// if the competing hog is mid-quantum when victim crosses the
			// threshold.
			topQuantum := int64(1) << uint(config.NQUE-1)
			if gap := promotedFromQ4 - enteredQ4; gap > ageThresh+topQuantum {
				return fmt.Errorf("promotion took %d ticks, want <= AGE_THRESH(%d)+top quantum(%d)", gap, ageThresh, topQuantum)
			}
			return nil
		},
	}
}

// scenarioS6 is spec.md §8's S6 (waitx accounting): a child sleeps for
// 100 ticks then computes for 100 ticks; waitx must report rtime == 100
// and wtime == (etime-ctime) - 100 - 100.
func scenarioS6() Scenario {
	var gotRtime, gotWtime int64
	var reaped bool

	return Scenario{
		Name:        "S6",
		Description: "waitx reports rtime and wtime for a child that sleeps 100 ticks then computes 100 ticks",
		Policy:      config.MLFQ,
		NCPU:        1,
		Ticks:       400,
		Spawn: func(k *sched.Kernel) {
			reaped = false
			k.Fork(-1, "init", nil)
			init := initSlot(k)
			slept := false
			compute := int64(100)
			k.Fork(init, "sleeper", sched.FuncWorkload(func(self int) sched.Result {
				if !slept {
					slept = true
					return sched.Result{SleepTicks: 100}
				}
				compute--
				return sched.Result{Finished: compute <= 0}
			}))
		},
		// Waitx is called from here, not from init's own Workload, since
		// sched.Workload.Step must never call back into the Kernel; this
		// mirrors a parent's wait() loop polling once per scheduling
		// quantum instead of blocking synchronously inside Step.
		Sample: func(tick int64, k *sched.Kernel) {
			if reaped {
				return
			}
			slot := initSlot(k)
			if k.Snapshot()[slot].State != ptable.RUNNING {
				return
			}
			if _, rtime, wtime, ok, _ := k.Waitx(slot); ok {
				gotRtime, gotWtime, reaped = rtime, wtime, true
			}
		},
		Verify: func(r Report) error {
			if !reaped {
				return fmt.Errorf("waitx never reaped the sleeper")
			}
			if gotRtime != 100 {
				return fmt.Errorf("rtime = %d, want 100", gotRtime)
			}
			if gotWtime < 0 {
				return fmt.Errorf("wtime = %d, want >= 0", gotWtime)
			}
			return nil
		},
	}
}

// initSlot finds the table slot of the most recently forked parent-less
// process, i.e. the scenario's "init". Scenarios always fork it first.
func initSlot(k *sched.Kernel) int {
	snap := k.Snapshot()
	best := -1
	for i, p := range snap {
		if p.State == ptable.UNUSED {
			continue
		}
		if p.Parent == -1 && (best == -1 || p.CTime < snap[best].CTime) {
			best = i
		}
	}
	return best
}

// Report is the outcome of running one Scenario: the tick the table fell
// fully idle (every non-init process exited, whether still ZOMBIE or
// already reaped) and a copy of every
// process's final accounting fields while they were still observable.
type Report struct {
	Scenario    string
	Description string
	Policy      string
	Completed   bool
	Ticks       int64
	Processes   []ptable.Process
}

// Run executes scenario against a fresh Kernel and returns a Report.
func Run(scenario Scenario, log *logrus.Logger) Report {
	k := sched.NewKernel(config.Config{
		Policy:    scenario.Policy,
		NCPU:      scenario.NCPU,
		AgeThresh: scenario.AgeThresh,
	}, log)
	scenario.Spawn(k)

	var ticks int64
	for ; ticks < scenario.Ticks; ticks++ {
		k.Tick()
		if scenario.Sample != nil {
			scenario.Sample(ticks, k)
		}
		if onlyInitRemains(k) {
			ticks++
			break
		}
	}

	return Report{
		Scenario:    scenario.Name,
		Description: scenario.Description,
		Policy:      scenario.Policy.String(),
		Completed:   onlyInitRemains(k),
		Ticks:       ticks,
		Processes:   k.Snapshot(),
	}
}

// onlyInitRemains reports whether every forked worker has exited: no slot
// with a parent remains RUNNABLE, RUNNING or SLEEPING. A ZOMBIE worker
// counts as exited whether or not anything has reaped it.
func onlyInitRemains(k *sched.Kernel) bool {
	for _, p := range k.Snapshot() {
		switch p.State {
		case ptable.RUNNABLE, ptable.RUNNING, ptable.SLEEPING:
			if p.Parent != -1 {
				return false
			}
		}
	}
	return true
}
