// Package kpanic implements the core's fatal-error path: invariant
// violations are not recoverable and halt the simulated kernel, mirroring
// xv6's panic() semantics rather than Go's usual "return an error" idiom.
package kpanic

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// Fatal logs a structured diagnostic (including a go-spew dump of detail,
// when provided) and then panics. Callers should treat this as a halt: it
// is reserved for the invariant violations enumerated in spec §7 —
// scheduling without ptable.lock held, sched() called while RUNNING, init
// exiting, an unknown APIC id, sleep() without a lock — never for ordinary
// argument or resource errors, which return -1 to the caller instead.
func Fatal(log *logrus.Logger, msg string, detail any) {
	fields := logrus.Fields{}
	if detail != nil {
		fields["detail"] = spew.Sdump(detail)
	}
	if log != nil {
		log.WithFields(fields).Error(msg)
	}
	panic(fmt.Sprintf("coresched: fatal invariant violation: %s", msg))
}
