package visual

import (
	"fmt"
	"strings"
)

// Status is the remote comparison outcome for one test on one target.
// Outcomes are data, not errors; they only become visible through the
// suite-end summary.
type Status string

const (
	// StatusPassed means the checkpoint(s) matched the baseline.
	StatusPassed Status = "passed"

	// StatusNew means no baseline existed; the snapshot became one.
	StatusNew Status = "new"

	// StatusFailed means at least one checkpoint differed from baseline.
	StatusFailed Status = "failed"

	// StatusUnresolved means the comparison could not be scored: the test
	// was aborted, submission failed, or authentication was rejected.
	StatusUnresolved Status = "unresolved"
)

// TestResult is the outcome of one test rendered on one target.
type TestResult struct {
	AppName  string
	TestName string
	Target   RenderTarget
	Status   Status

	// Aborted marks results from a test that aborted instead of closing.
	Aborted bool

	// Err explains an unresolved result, e.g. ErrAuthentication.
	Err error
}

// Summary aggregates every remote comparison outcome of a suite run.
// It is only available through Runner.GetAllTestResults.
type Summary struct {
	BatchName string
	Results   []TestResult
}

// Count returns how many results have the given status.
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Errored reports whether any result failed or could not be resolved.
// A true value should fail the suite with a non-zero exit.
func (s *Summary) Errored() bool {
	return s.Count(StatusFailed) > 0 || s.Count(StatusUnresolved) > 0
}

// String renders the one human-readable block printed at suite end.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "visual test results for batch %q:\n", s.BatchName)
	fmt.Fprintf(&b, "  passed=%d new=%d failed=%d unresolved=%d\n",
		s.Count(StatusPassed), s.Count(StatusNew), s.Count(StatusFailed), s.Count(StatusUnresolved))
	for _, r := range s.Results {
		fmt.Fprintf(&b, "  [%-10s] %s / %s on %s", r.Status, r.AppName, r.TestName, r.Target)
		if r.Aborted {
			b.WriteString(" (aborted)")
		}
		if r.Err != nil {
			fmt.Fprintf(&b, " - %v", r.Err)
		}
		b.WriteString("\n")
	}
	return b.String()
}
