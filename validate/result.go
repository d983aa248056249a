// Package validate implements the testable correctness properties as
// a standalone post-stage check pass, run against already-built
// pipeline artifacts rather than wired into the build path itself.
package validate

import "fmt"

// Result accumulates the outcome of a batch of checks: every check
// runs even after an earlier one fails, so a single pass reports
// everything wrong with the artifact under test rather than just the
// first thing.
type Result struct {
	ChecksRun    int
	ChecksPassed int
	Errors       []string
	Warnings     []string
}

// Passed reports whether every check that ran also passed.
func (r *Result) Passed() bool { return len(r.Errors) == 0 }

func (r *Result) pass() {
	r.ChecksRun++
	r.ChecksPassed++
}

func (r *Result) fail(format string, args ...interface{}) {
	r.ChecksRun++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another Result's counters and messages into r, for
// combining the output of several independent checks into one report.
func (r *Result) Merge(other *Result) {
	r.ChecksRun += other.ChecksRun
	r.ChecksPassed += other.ChecksPassed
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
