package sched

import "github.com/gokernel/coresched/internal/ptable"

// fcfsPolicy is spec.md §4.3's first-come-first-served discipline:
// non-preemptive, dispatch order by ctime (allocproc order), ties broken
// by pid.
type fcfsPolicy struct{}

// NewFCFS returns the FCFS Policy.
func NewFCFS() Policy { return &fcfsPolicy{} }

func (p *fcfsPolicy) Name() string { return "FCFS" }

func (p *fcfsPolicy) Admit(t *ptable.Table, slot int, now int64) {}

func (p *fcfsPolicy) Requeue(t *ptable.Table, slot int, now int64) {}

func (p *fcfsPolicy) OnDispatch(pr *ptable.Process) {}

// ShouldPreempt is always false: FCFS runs a process until it blocks or
// exits of its own accord.
func (p *fcfsPolicy) ShouldPreempt(t *ptable.Table, slot int, now int64) bool { return false }

func (p *fcfsPolicy) Select(t *ptable.Table, now int64) (int, bool) {
	best := -1
	for i := 0; i < t.Len(); i++ {
		pr := t.At(i)
		if pr.State != ptable.RUNNABLE {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		bp := t.At(best)
		if pr.CTime < bp.CTime || (pr.CTime == bp.CTime && pr.PID < bp.PID) {
			best = i
		}
	}
	return best, best != -1
}
