package ptable

import (
	"testing"

	"github.com/gokernel/coresched/internal/config"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestAllocProcAssignsSequentialPIDs(t *testing.T) {
	tbl := New(config.New(config.Config{NPROC: 4}), testLogger())
	tbl.Lock()
	defer tbl.Unlock()

	s1, ok := tbl.AllocProc(0, "a", -1)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	s2, ok := tbl.AllocProc(0, "b", -1)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	if tbl.At(s1).PID == tbl.At(s2).PID {
		t.Fatalf("expected distinct PIDs, got %d and %d", tbl.At(s1).PID, tbl.At(s2).PID)
	}
	if tbl.At(s1).State != EMBRYO {
		t.Fatalf("expected EMBRYO, got %v", tbl.At(s1).State)
	}
}

func TestAllocProcFullTable(t *testing.T) {
	tbl := New(config.New(config.Config{NPROC: 1}), testLogger())
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.AllocProc(0, "a", -1); !ok {
		t.Fatal("expected first allocation to succeed")
	}
	if _, ok := tbl.AllocProc(0, "b", -1); ok {
		t.Fatal("expected second allocation to fail: table is full")
	}
}

func TestSetStateRejectsIllegalTransition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected SetState to panic on an illegal transition")
		}
	}()

	tbl := New(config.New(config.Config{NPROC: 1}), testLogger())
	tbl.Lock()
	defer tbl.Unlock()
	slot, _ := tbl.AllocProc(0, "a", -1)
	// EMBRYO -> RUNNING is not in the transition table.
	tbl.SetState(slot, RUNNING)
}

func TestSetStateClearsChanOnLeavingSleeping(t *testing.T) {
	tbl := New(config.New(config.Config{NPROC: 1}), testLogger())
	tbl.Lock()
	defer tbl.Unlock()
	slot, _ := tbl.AllocProc(0, "a", -1)
	tbl.SetState(slot, RUNNABLE)
	tbl.SetState(slot, RUNNING)
	tbl.At(slot).Chan = "some-channel"
	tbl.SetState(slot, SLEEPING)
	if tbl.At(slot).Chan == nil {
		t.Fatal("expected Chan to be set while SLEEPING")
	}
	tbl.SetState(slot, RUNNABLE)
	if tbl.At(slot).Chan != nil {
		t.Fatal("expected Chan to be cleared after leaving SLEEPING")
	}
}

func TestFreeSlotRequiresZombie(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected FreeSlot to panic on a non-ZOMBIE slot")
		}
	}()
	tbl := New(config.New(config.Config{NPROC: 1}), testLogger())
	tbl.Lock()
	defer tbl.Unlock()
	slot, _ := tbl.AllocProc(0, "a", -1)
	tbl.FreeSlot(slot)
}

func TestFullLifecycle(t *testing.T) {
	tbl := New(config.New(config.Config{NPROC: 1}), testLogger())
	tbl.Lock()
	defer tbl.Unlock()
	slot, _ := tbl.AllocProc(0, "a", -1)
	tbl.SetState(slot, RUNNABLE)
	tbl.SetState(slot, RUNNING)
	tbl.SetState(slot, ZOMBIE)
	tbl.FreeSlot(slot)
	if tbl.At(slot).State != UNUSED {
		t.Fatalf("expected UNUSED after FreeSlot, got %v", tbl.At(slot).State)
	}
}
