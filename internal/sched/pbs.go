package sched

import "github.com/gokernel/coresched/internal/ptable"

// pbsPolicy is spec.md §4.3's priority-based discipline: lower Priority
// value wins, ties broken by fewer prior dispatches then lower pid, and
// preemptive — a RUNNING process yields as soon as a strictly
// better-priority process becomes RUNNABLE.
type pbsPolicy struct{}

// NewPBS returns the PBS Policy.
func NewPBS() Policy { return &pbsPolicy{} }

func (p *pbsPolicy) Name() string { return "PBS" }

func (p *pbsPolicy) Admit(t *ptable.Table, slot int, now int64) {}

func (p *pbsPolicy) Requeue(t *ptable.Table, slot int, now int64) {}

func (p *pbsPolicy) OnDispatch(pr *ptable.Process) { pr.TimeSlices++ }

func better(t *ptable.Table, a, b int) bool {
	pa, pb := t.At(a), t.At(b)
	switch {
	case pa.Priority != pb.Priority:
		return pa.Priority < pb.Priority
	case pa.NRun != pb.NRun:
		return pa.NRun < pb.NRun
	default:
		return pa.PID < pb.PID
	}
}

func (p *pbsPolicy) Select(t *ptable.Table, now int64) (int, bool) {
	best := -1
	for i := 0; i < t.Len(); i++ {
		if t.At(i).State != ptable.RUNNABLE {
			continue
		}
		if best == -1 || better(t, i, best) {
			best = i
		}
	}
	return best, best != -1
}

// ShouldPreempt reports whether a strictly better-priority process than
// slot is currently RUNNABLE.
func (p *pbsPolicy) ShouldPreempt(t *ptable.Table, slot int, now int64) bool {
	for i := 0; i < t.Len(); i++ {
		if i == slot || t.At(i).State != ptable.RUNNABLE {
			continue
		}
		if better(t, i, slot) {
			return true
		}
	}
	return false
}
