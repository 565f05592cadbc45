package bench

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestAllScenariosCompleteWithinTheirTickBudget(t *testing.T) {
	for _, sc := range Scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			report := Run(sc, testLogger())
			if !report.Completed {
				t.Fatalf("%s did not complete within %d ticks", sc.Name, sc.Ticks)
			}
			if report.Policy != sc.Policy.String() {
				t.Fatalf("report.Policy = %q, want %q", report.Policy, sc.Policy.String())
			}
			if report.Ticks <= 0 || report.Ticks > sc.Ticks {
				t.Fatalf("report.Ticks = %d, want in (0, %d]", report.Ticks, sc.Ticks)
			}
		})
	}
}

// TestScenariosSatisfySpecAssertion runs every scenario's own Verify
// against its Report, checking the literal spec.md §8 assertion each
// scenario name (S1-S6) stands for, not just that it finished in time.
func TestScenariosSatisfySpecAssertion(t *testing.T) {
	for _, sc := range Scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			if sc.Verify == nil {
				t.Fatalf("%s has no Verify — every scenario must assert its spec.md §8 claim", sc.Name)
			}
			report := Run(sc, testLogger())
			if err := sc.Verify(report); err != nil {
				t.Fatalf("%s: %v", sc.Name, err)
			}
		})
	}
}
