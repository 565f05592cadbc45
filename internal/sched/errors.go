package sched

import "errors"

// Sentinel errors for the resource-exhausted paths of spec.md §7. Callers
// are expected to use errors.Is.
var (
	ErrNoFreeProc      = errors.New("sched: no free process slot")
	ErrNoKStack        = errors.New("sched: kernel stack allocation failed")
	ErrNoMemory        = errors.New("sched: address space allocation failed")
	ErrNoSuchProc      = errors.New("sched: no such process")
	ErrInvalidPriority = errors.New("sched: priority out of range")
)
