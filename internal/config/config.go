// Package config centralizes the build-time and run-time tunables for the
// scheduling core: table size, CPU count, the active policy, and the MLFQ
// aging threshold. Mirrors the teacher's pattern of a single options struct
// with a defaulting constructor (see plib.LinuxInspectorConfig,
// source.GitManagerConfig) rather than scattering package-level flags.
package config

import "fmt"

// Policy selects which of the four scheduling disciplines the core runs.
// Exactly one is active for the lifetime of a Kernel; spec.md explicitly
// treats runtime reconfiguration of the active policy as a non-goal.
type Policy int

const (
	RR Policy = iota
	FCFS
	PBS
	MLFQ
)

func (p Policy) String() string {
	switch p {
	case RR:
		return "RR"
	case FCFS:
		return "FCFS"
	case PBS:
		return "PBS"
	case MLFQ:
		return "MLFQ"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a CLI/env string into a Policy. Unknown values
// default to RR, matching the teacher's tendency to fail soft in CLI glue
// and let deeper validation reject genuinely bad input.
func ParsePolicy(s string) Policy {
	switch s {
	case "FCFS", "fcfs":
		return FCFS
	case "PBS", "pbs":
		return PBS
	case "MLFQ", "mlfq":
		return MLFQ
	default:
		return RR
	}
}

const (
	// DefaultNPROC is the fixed size of the process table.
	DefaultNPROC = 64
	// DefaultNCPU is the number of simulated per-CPU scheduler loops.
	DefaultNCPU = 2
	// NQUE is the number of MLFQ priority levels. Fixed by spec, not
	// configurable.
	NQUE = 5
	// AgeThresh is the number of ticks a RUNNABLE process may wait in a
	// queue above 0 before being promoted.
	AgeThresh = 25
	// DefaultPriority is the starting PBS priority assigned at allocproc.
	DefaultPriority = 60
	// MinPriority and MaxPriority bound legal set_priority values.
	MinPriority = 0
	MaxPriority = 100
)

// Config is the full set of tunables for a Kernel instance.
type Config struct {
	NPROC     int
	NCPU      int
	Policy    Policy
	AgeThresh int
}

// New returns a Config with every unset (zero-value) field replaced by its
// default, the same "opts, then fill in defaults" shape as
// plib.NewLinuxInspector.
func New(opts Config) Config {
	c := opts
	if c.NPROC <= 0 {
		c.NPROC = DefaultNPROC
	}
	if c.NCPU <= 0 {
		c.NCPU = DefaultNCPU
	}
	if c.AgeThresh <= 0 {
		c.AgeThresh = AgeThresh
	}
	return c
}
