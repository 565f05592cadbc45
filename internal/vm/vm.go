// Package vm models the external collaborators spec.md §6 names but puts
// out of scope: the VM layer (setupkvm, inituvm, copyuvm, allocuvm,
// deallocuvm, freevm, switchuvm, switchkvm) and the kernel's page-sized
// allocator for kernel stacks. The core consumes these through the
// Manager and Allocator interfaces below; this package provides the only
// implementation, an in-memory fake good enough to exercise every call
// site the real ones would see, without pretending to model real paging.
package vm

import (
	"fmt"
	"sync"
)

// KStackSize mirrors a single kernel-stack page in the source (PGSIZE in
// xv6); only its presence/absence matters to the core, never its layout.
const KStackSize = 4096

// Manager is the VM-layer contract consumed by allocproc/fork/exit.
type Manager interface {
	// SetupKVM creates a fresh kernel-only page directory (setupkvm).
	SetupKVM() (uintptr, error)
	// InitUVM copies an initial program image into a freshly created
	// user address space (inituvm).
	InitUVM(pgdir uintptr, image []byte) error
	// CopyUVM duplicates a full address space of size sz for fork
	// (copyuvm).
	CopyUVM(pgdir uintptr, sz uint64) (uintptr, error)
	// AllocUVM grows a user address space from oldSz to newSz
	// (allocuvm).
	AllocUVM(pgdir uintptr, oldSz, newSz uint64) (uint64, error)
	// DeallocUVM shrinks a user address space (deallocuvm).
	DeallocUVM(pgdir uintptr, oldSz, newSz uint64) (uint64, error)
	// FreeVM releases every page owned by pgdir, including the
	// directory itself (freevm).
	FreeVM(pgdir uintptr)
	// SwitchUVM installs pgdir as the active address space for the
	// calling kernel thread (switchuvm).
	SwitchUVM(pgdir uintptr)
	// SwitchKVM restores the kernel-only address space, used when no
	// process is running on a CPU (switchkvm).
	SwitchKVM()
}

// Allocator hands out and reclaims page-sized kernel-stack regions.
type Allocator interface {
	AllocStack() ([]byte, error)
	FreeStack([]byte)
}

// fakeManager is a deterministic in-memory Manager: each "page directory"
// is just a key into a map of byte slices. Its only failure is being
// handed a pgdir it does not know (never created, or already freed); the
// FailNext hook for the "kernel-stack allocation failed" EMBRYO -> UNUSED
// transition lives on fakeAllocator, not here.
type fakeManager struct {
	mu     sync.Mutex
	spaces map[uintptr][]byte
	next   uintptr
}

// NewFakeManager returns a Manager suitable for tests and for driving the
// CLI simulation without a real kernel underneath it.
func NewFakeManager() Manager {
	return &fakeManager{spaces: map[uintptr][]byte{}, next: 1}
}

func (m *fakeManager) SetupKVM() (uintptr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.spaces[id] = nil
	return id, nil
}

func (m *fakeManager) InitUVM(pgdir uintptr, image []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spaces[pgdir]; !ok {
		return fmt.Errorf("vm: inituvm: unknown pgdir %d", pgdir)
	}
	buf := make([]byte, len(image))
	copy(buf, image)
	m.spaces[pgdir] = buf
	return nil
}

func (m *fakeManager) CopyUVM(pgdir uintptr, sz uint64) (uintptr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.spaces[pgdir]
	if !ok {
		return 0, fmt.Errorf("vm: copyuvm: unknown pgdir %d", pgdir)
	}
	id := m.next
	m.next++
	dst := make([]byte, len(src))
	copy(dst, src)
	m.spaces[id] = dst
	return id, nil
}

func (m *fakeManager) AllocUVM(pgdir uintptr, oldSz, newSz uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.spaces[pgdir]
	if !ok {
		return oldSz, fmt.Errorf("vm: allocuvm: unknown pgdir %d", pgdir)
	}
	if newSz > uint64(len(buf)) {
		grown := make([]byte, newSz)
		copy(grown, buf)
		m.spaces[pgdir] = grown
	}
	return newSz, nil
}

func (m *fakeManager) DeallocUVM(pgdir uintptr, oldSz, newSz uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.spaces[pgdir]
	if !ok {
		return oldSz, fmt.Errorf("vm: deallocuvm: unknown pgdir %d", pgdir)
	}
	if newSz < uint64(len(buf)) {
		m.spaces[pgdir] = buf[:newSz]
	}
	return newSz, nil
}

func (m *fakeManager) FreeVM(pgdir uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.spaces, pgdir)
}

func (m *fakeManager) SwitchUVM(pgdir uintptr) {}
func (m *fakeManager) SwitchKVM()               {}

// fakeAllocator is a free-list over fixed KStackSize slabs.
type fakeAllocator struct {
	mu       sync.Mutex
	freeList [][]byte
	// failNext, when > 0, causes that many subsequent AllocStack calls to
	// fail, modeling exhaustion for the "no free kernel stack" path in
	// spec.md §7.
	failNext int
}

// NewFakeAllocator returns an Allocator with an effectively unbounded
// supply of stacks, allocating fresh slabs on demand and recycling freed
// ones.
func NewFakeAllocator() Allocator {
	return &fakeAllocator{}
}

func (a *fakeAllocator) AllocStack() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failNext > 0 {
		a.failNext--
		return nil, fmt.Errorf("vm: kernel-stack allocation failed")
	}
	if n := len(a.freeList); n > 0 {
		s := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return s, nil
	}
	return make([]byte, KStackSize), nil
}

func (a *fakeAllocator) FreeStack(s []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freeList = append(a.freeList, s)
}

// FailableAllocator exposes FailNext for tests that need to force
// allocproc's resource-exhausted path.
type FailableAllocator interface {
	Allocator
	FailNext(n int)
}

func (a *fakeAllocator) FailNext(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext = n
}

var _ FailableAllocator = (*fakeAllocator)(nil)
