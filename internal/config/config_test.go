package config

import "testing"

func TestNewFillsDefaults(t *testing.T) {
	c := New(Config{})
	if c.NPROC != DefaultNPROC {
		t.Fatalf("NPROC = %d, want %d", c.NPROC, DefaultNPROC)
	}
	if c.NCPU != DefaultNCPU {
		t.Fatalf("NCPU = %d, want %d", c.NCPU, DefaultNCPU)
	}
	if c.AgeThresh != AgeThresh {
		t.Fatalf("AgeThresh = %d, want %d", c.AgeThresh, AgeThresh)
	}
	if c.Policy != RR {
		t.Fatalf("Policy = %v, want RR (the zero value)", c.Policy)
	}
}

func TestNewPreservesExplicitValues(t *testing.T) {
	c := New(Config{NPROC: 16, NCPU: 4, Policy: MLFQ, AgeThresh: 5})
	if c.NPROC != 16 || c.NCPU != 4 || c.Policy != MLFQ || c.AgeThresh != 5 {
		t.Fatalf("New() clobbered explicit values: %+v", c)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]Policy{
		"RR":      RR,
		"rr":      RR,
		"bogus":   RR,
		"FCFS":    FCFS,
		"fcfs":    FCFS,
		"PBS":     PBS,
		"pbs":     PBS,
		"MLFQ":    MLFQ,
		"mlfq":    MLFQ,
	}
	for s, want := range cases {
		if got := ParsePolicy(s); got != want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestPolicyString(t *testing.T) {
	for _, p := range []Policy{RR, FCFS, PBS, MLFQ} {
		if p.String() == "" {
			t.Errorf("Policy(%d).String() is empty", p)
		}
	}
	if got := Policy(99).String(); got == "" {
		t.Error("expected a non-empty fallback string for an unknown Policy")
	}
}
