package sched

import "github.com/gokernel/coresched/internal/ptable"

// rrPolicy is spec.md §4.3's round-robin discipline: a single unbounded
// queue, a one-tick quantum, and dispatch order that walks the table
// starting just after the last slot picked.
type rrPolicy struct {
	cursor int
}

// NewRR returns the round-robin Policy.
func NewRR() Policy { return &rrPolicy{cursor: -1} }

func (p *rrPolicy) Name() string { return "RR" }

func (p *rrPolicy) Admit(t *ptable.Table, slot int, now int64) {}

func (p *rrPolicy) Requeue(t *ptable.Table, slot int, now int64) {}

func (p *rrPolicy) OnDispatch(pr *ptable.Process) { pr.TimeSlices++ }

// ShouldPreempt always returns true: RR's quantum is exactly one tick.
func (p *rrPolicy) ShouldPreempt(t *ptable.Table, slot int, now int64) bool { return true }

// Select walks the table circularly starting after cursor, returning the
// first RUNNABLE slot found.
func (p *rrPolicy) Select(t *ptable.Table, now int64) (int, bool) {
	n := t.Len()
	for i := 1; i <= n; i++ {
		idx := (p.cursor + i) % n
		if t.At(idx).State == ptable.RUNNABLE {
			p.cursor = idx
			return idx, true
		}
	}
	return -1, false
}
