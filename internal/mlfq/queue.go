// Package mlfq implements the MLFQ queue arena described in spec.md §2
// and §9: a statically sized pool of singly-linked list nodes (sized to
// NPROC) and NQUE queue heads, with allocation a linear scan over the
// pool. This replaces the source's q_alloc, which returns -1 (an int)
// where a node pointer is expected on exhaustion — a bug spec.md §9 calls
// out by name. Here allocation is total over a pool sized to NPROC, so
// exhaustion can never occur in correct use; q_alloc failing is instead
// modeled as a fatal invariant violation, matching spec.md §7's "no free
// queue node: fatal (pool sized for NPROC, so this is an invariant
// violation)".
package mlfq

import (
	"github.com/gokernel/coresched/internal/kpanic"
	"github.com/sirupsen/logrus"
)

// node is one element of the arena. next is an index into Arena.nodes, or
// -1. proc is the slot index (into ptable.Table) it carries.
type node struct {
	proc int
	next int
	use  bool
}

// Arena is a fixed pool of NPROC nodes plus NQUE queue heads, replacing
// the source's raw pointer-chasing linked lists with an index-based arena
// (spec.md §9: "replace raw pointer chasing with a node arena indexed by
// slot number; queue heads are node indices").
type Arena struct {
	nodes []node
	heads []int // len == nque, -1 means empty
	log   *logrus.Logger
}

// NewArena allocates an arena sized for the given NPROC and NQUE.
func NewArena(nproc, nque int, log *logrus.Logger) *Arena {
	a := &Arena{
		nodes: make([]node, nproc),
		heads: make([]int, nque),
		log:   log,
	}
	for i := range a.nodes {
		a.nodes[i].next = -1
	}
	for i := range a.heads {
		a.heads[i] = -1
	}
	return a
}

// alloc scans the pool for a free node. Total over a pool sized to
// NPROC; failure is an invariant violation, not a recoverable error.
func (a *Arena) alloc() int {
	for i := range a.nodes {
		if !a.nodes[i].use {
			a.nodes[i].use = true
			a.nodes[i].next = -1
			return i
		}
	}
	kpanic.Fatal(a.log, "mlfq: node arena exhausted (pool sized for NPROC)", nil)
	return -1
}

func (a *Arena) free(idx int) {
	a.nodes[idx].use = false
	a.nodes[idx].next = -1
}

// Push appends proc to the tail of queue q.
func (a *Arena) Push(q, proc int) {
	idx := a.alloc()
	a.nodes[idx].proc = proc
	a.nodes[idx].next = -1

	if a.heads[q] == -1 {
		a.heads[q] = idx
		return
	}
	cur := a.heads[q]
	for a.nodes[cur].next != -1 {
		cur = a.nodes[cur].next
	}
	a.nodes[cur].next = idx
}

// Pop removes and returns the head of queue q (slot index) and true, or
// (0, false) if the queue is empty.
func (a *Arena) Pop(q int) (int, bool) {
	head := a.heads[q]
	if head == -1 {
		return 0, false
	}
	proc := a.nodes[head].proc
	a.heads[q] = a.nodes[head].next
	a.free(head)
	return proc, true
}

// Remove deletes the first node in queue q carrying proc, if present, and
// reports whether one was found. Used by aging, which must pull a process
// out of its current queue before re-admitting it one level higher.
func (a *Arena) Remove(q, proc int) bool {
	cur := a.heads[q]
	prev := -1
	for cur != -1 {
		if a.nodes[cur].proc == proc {
			if prev == -1 {
				a.heads[q] = a.nodes[cur].next
			} else {
				a.nodes[prev].next = a.nodes[cur].next
			}
			a.free(cur)
			return true
		}
		prev = cur
		cur = a.nodes[cur].next
	}
	return false
}

// Each calls fn for every process currently queued in q, head to tail.
func (a *Arena) Each(q int, fn func(proc int)) {
	cur := a.heads[q]
	for cur != -1 {
		fn(a.nodes[cur].proc)
		cur = a.nodes[cur].next
	}
}

// Empty reports whether queue q has no members.
func (a *Arena) Empty(q int) bool { return a.heads[q] == -1 }
