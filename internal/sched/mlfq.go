package sched

import (
	"github.com/gokernel/coresched/internal/config"
	"github.com/gokernel/coresched/internal/mlfq"
	"github.com/gokernel/coresched/internal/ptable"
)

// mlfqPolicy is spec.md §4.3's multi-level feedback queue: NQUE levels,
// quantum 2^queue ticks, demotion on quantum exhaustion, promotion after
// AgeThresh ticks spent waiting RUNNABLE in a queue above 0.
type mlfqPolicy struct {
	arena     *mlfq.Arena
	ageThresh int64
}

// NewMLFQ returns the MLFQ Policy backed by the given queue arena.
func NewMLFQ(arena *mlfq.Arena, ageThresh int) Policy {
	return &mlfqPolicy{arena: arena, ageThresh: int64(ageThresh)}
}

func (p *mlfqPolicy) Name() string { return "MLFQ" }

// quantum returns the tick budget of queue q: 2^q.
func quantum(q int) int64 { return int64(1) << uint(q) }

// Admit places a process on its queue: level 0 the first time it ever
// becomes RUNNABLE, its existing level on every subsequent admission
// (wakeup from sleep keeps the level it had earned).
func (p *mlfqPolicy) Admit(t *ptable.Table, slot int, now int64) {
	pr := t.At(slot)
	if !pr.EverQueued {
		pr.Queue = 0
		pr.EverQueued = true
	}
	pr.CTicks = 0
	pr.TAlloc = now
	pr.GotQueue = true
	p.arena.Push(pr.Queue, slot)
}

// age promotes every RUNNABLE process that has waited AgeThresh ticks or
// more in a queue above 0.
func (p *mlfqPolicy) age(t *ptable.Table, now int64) {
	for q := 1; q < config.NQUE; q++ {
		var due []int
		p.arena.Each(q, func(proc int) {
			if now-t.At(proc).TAlloc >= p.ageThresh {
				due = append(due, proc)
			}
		})
		for _, proc := range due {
			p.arena.Remove(q, proc)
			pr := t.At(proc)
			pr.Queue--
			pr.TAlloc = now
			p.arena.Push(pr.Queue, proc)
		}
	}
}

// Select ages the queues, then returns the head of the lowest non-empty
// level. The popped process leaves queue membership, so GotQueue clears
// until Requeue (or a later Admit) puts it back on a queue.
func (p *mlfqPolicy) Select(t *ptable.Table, now int64) (int, bool) {
	p.age(t, now)
	for q := 0; q < config.NQUE; q++ {
		if proc, ok := p.arena.Pop(q); ok {
			t.At(proc).GotQueue = false
			return proc, true
		}
	}
	return -1, false
}

func (p *mlfqPolicy) OnDispatch(pr *ptable.Process) { pr.TimeSlices++ }

// ShouldPreempt reports whether the process has exhausted its current
// queue's quantum.
func (p *mlfqPolicy) ShouldPreempt(t *ptable.Table, slot int, now int64) bool {
	pr := t.At(slot)
	return pr.CTicks >= quantum(pr.Queue)
}

// Requeue demotes a process whose quantum ran out (queue-capped at the
// bottom level) and re-admits it.
func (p *mlfqPolicy) Requeue(t *ptable.Table, slot int, now int64) {
	pr := t.At(slot)
	if pr.CTicks >= quantum(pr.Queue) && pr.Queue < config.NQUE-1 {
		pr.Queue++
	}
	pr.CTicks = 0
	pr.TAlloc = now
	pr.GotQueue = true
	p.arena.Push(pr.Queue, slot)
}
