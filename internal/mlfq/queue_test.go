package mlfq

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestPushPopFIFO(t *testing.T) {
	a := NewArena(4, 2, testLogger())
	a.Push(0, 10)
	a.Push(0, 20)
	a.Push(0, 30)

	for _, want := range []int{10, 20, 30} {
		got, ok := a.Pop(0)
		if !ok || got != want {
			t.Fatalf("Pop(0) = %d, %v; want %d, true", got, ok, want)
		}
	}
	if _, ok := a.Pop(0); ok {
		t.Fatal("expected queue 0 to be empty")
	}
}

func TestRemoveFromMiddle(t *testing.T) {
	a := NewArena(4, 1, testLogger())
	a.Push(0, 1)
	a.Push(0, 2)
	a.Push(0, 3)

	if !a.Remove(0, 2) {
		t.Fatal("expected to remove proc 2")
	}
	if a.Remove(0, 2) {
		t.Fatal("expected second removal of proc 2 to fail")
	}

	got1, _ := a.Pop(0)
	got2, _ := a.Pop(0)
	if got1 != 1 || got2 != 3 {
		t.Fatalf("got %d, %d; want 1, 3", got1, got2)
	}
}

func TestArenaExhaustionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected node exhaustion to panic")
		}
	}()
	a := NewArena(1, 1, testLogger())
	a.Push(0, 1)
	a.Push(0, 2) // exceeds the pool sized for NPROC=1
}

func TestEmpty(t *testing.T) {
	a := NewArena(2, 1, testLogger())
	if !a.Empty(0) {
		t.Fatal("expected a fresh queue to be empty")
	}
	a.Push(0, 1)
	if a.Empty(0) {
		t.Fatal("expected queue to be non-empty after Push")
	}
}
