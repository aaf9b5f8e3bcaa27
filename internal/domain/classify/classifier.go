// Package classify maps execution results to findings via a flat,
// priority-ordered rule table. The first matching rule wins; a result
// yields at most one bug. Classification is a pure function of the
// result's recorded fields.
package classify

import (
	"fmt"
	"strings"
	"time"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// Keyword sets, matched case-insensitively against combined stdout+stderr.
// Order within a set does not matter; order between rules does.
var (
	criticalPatterns = []string{"fatal", "panic", "segmentation fault"}
	highPatterns     = []string{"error", "exception", "assertion failed"}
	mediumPatterns   = []string{"warning", "timeout", "cannot find"}
	lowPatterns      = []string{"connection refused"}
)

// rule is one predicate→outcome pair of the classification table.
type rule struct {
	matches func(domain.ExecutionResult) bool
	emit    func(domain.ExecutionResult) domain.Bug
}

// Classifier evaluates the rule table. PerEntryTimeout is only used to
// word timeout findings; it carries no hidden state.
type Classifier struct {
	perEntryTimeout time.Duration
	rules           []rule
}

func New(perEntryTimeout time.Duration) *Classifier {
	c := &Classifier{perEntryTimeout: perEntryTimeout}
	c.rules = []rule{
		{matches: spawnFailed, emit: c.spawnBug},
		{matches: execFailed, emit: execBug},
		{matches: timedOut, emit: c.timeoutBug},
		{matches: probeFailed, emit: probeBug},
		{matches: outputHasAny(criticalPatterns), emit: patternBug(criticalPatterns, domain.SeverityCritical)},
		{matches: exitCodeAbove(100), emit: exitBug(domain.SeverityCritical)},
		{matches: outputHasAny(highPatterns), emit: patternBug(highPatterns, domain.SeverityHigh)},
		{matches: exitCodeBetween(1, 100), emit: exitBug(domain.SeverityHigh)},
		{matches: outputHasAny(mediumPatterns), emit: patternBug(mediumPatterns, domain.SeverityMedium)},
		{matches: outputHasAny(lowPatterns), emit: patternBug(lowPatterns, domain.SeverityLow)},
	}
	return c
}

// Classify returns the finding for a result, or nil when no rule fires
// (clean exit, no matching keyword). A canceled entry is the operator's
// doing, never a defect of the target.
func (c *Classifier) Classify(res domain.ExecutionResult) *domain.Bug {
	if res.State == domain.StateCanceled {
		return nil
	}
	for _, r := range c.rules {
		if r.matches(res) {
			bug := r.emit(res)
			return &bug
		}
	}
	return nil
}

// ── predicates ──

func spawnFailed(r domain.ExecutionResult) bool { return r.SpawnError != "" }

func execFailed(r domain.ExecutionResult) bool { return r.State == domain.StateFailed }

func timedOut(r domain.ExecutionResult) bool { return r.TimedOut }

func probeFailed(r domain.ExecutionResult) bool {
	return r.Probe != nil && !r.Probe.Alive
}

func outputHasAny(patterns []string) func(domain.ExecutionResult) bool {
	return func(r domain.ExecutionResult) bool {
		return firstMatch(patterns, r.CombinedOutput()) != ""
	}
}

func exitCodeAbove(n int) func(domain.ExecutionResult) bool {
	return func(r domain.ExecutionResult) bool {
		return r.ExitCode != nil && *r.ExitCode > n
	}
}

func exitCodeBetween(lo, hi int) func(domain.ExecutionResult) bool {
	return func(r domain.ExecutionResult) bool {
		return r.ExitCode != nil && *r.ExitCode >= lo && *r.ExitCode <= hi
	}
}

func firstMatch(patterns []string, output string) string {
	lower := strings.ToLower(output)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

// ── outcomes ──

func (c *Classifier) spawnBug(r domain.ExecutionResult) domain.Bug {
	return domain.Bug{
		Title:        fmt.Sprintf("Failed to start: %s", r.EntryPoint.Label),
		Kind:         domain.KindExecutionError,
		Severity:     domain.SeverityHigh,
		Description:  fmt.Sprintf("The command could not be spawned: %s", r.SpawnError),
		Reproduction: r.EntryPoint.CommandLine(),
		Output:       r.SpawnError,
	}
}

func execBug(r domain.ExecutionResult) domain.Bug {
	return domain.Bug{
		Title:    fmt.Sprintf("Execution failed: %s", r.EntryPoint.Label),
		Kind:     domain.KindExecutionError,
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("The process started but could not be executed to completion: %s",
			r.ExecError),
		Reproduction: r.EntryPoint.CommandLine(),
		Output:       r.RelevantOutput(),
	}
}

func (c *Classifier) timeoutBug(r domain.ExecutionResult) domain.Bug {
	return domain.Bug{
		Title:    fmt.Sprintf("Execution timeout after %s", c.perEntryTimeout),
		Kind:     domain.KindExecutionTimeout,
		Severity: domain.SeverityMedium,
		Description: fmt.Sprintf("'%s' did not terminate within the per-entry timeout of %s and was forcibly killed.",
			r.EntryPoint.Label, c.perEntryTimeout),
		Reproduction: r.EntryPoint.CommandLine(),
		Output:       r.RelevantOutput(),
	}
}

func probeBug(r domain.ExecutionResult) domain.Bug {
	return domain.Bug{
		Title:    fmt.Sprintf("Live server probe failed: %s", r.Probe.Error),
		Kind:     domain.KindLiveProbeFailure,
		Severity: domain.SeverityHigh,
		Description: fmt.Sprintf("'%s' started but no web server answered on the probed ports (%s).",
			r.EntryPoint.Label, r.Probe.Error),
		Reproduction:   r.EntryPoint.CommandLine(),
		Output:         r.RelevantOutput(),
		Recommendation: "Ensure that all dependent services (databases, APIs) are running.",
	}
}

func patternBug(patterns []string, severity domain.Severity) func(domain.ExecutionResult) domain.Bug {
	return func(r domain.ExecutionResult) domain.Bug {
		matched := firstMatch(patterns, r.CombinedOutput())
		return domain.Bug{
			Title:    fmt.Sprintf("Found %q in output", matched),
			Kind:     domain.KindErrorPattern,
			Severity: severity,
			Description: fmt.Sprintf("Executing '%s' produced output containing %q.",
				r.EntryPoint.Label, matched),
			Reproduction:   r.EntryPoint.CommandLine(),
			Output:         r.RelevantOutput(),
			Recommendation: recommendationFor(r.CombinedOutput()),
		}
	}
}

func exitBug(severity domain.Severity) func(domain.ExecutionResult) domain.Bug {
	return func(r domain.ExecutionResult) domain.Bug {
		return domain.Bug{
			Title:    fmt.Sprintf("Process exited with code %d", *r.ExitCode),
			Kind:     domain.KindNonZeroExit,
			Severity: severity,
			Description: fmt.Sprintf("'%s' terminated with a non-zero exit code.",
				r.EntryPoint.Label),
			Reproduction: r.EntryPoint.CommandLine(),
			Output:       r.RelevantOutput(),
		}
	}
}

// recommendationFor attaches a fix hint for a few well-known failure
// shapes; empty for everything else.
func recommendationFor(output string) string {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "module not found") || strings.Contains(lower, "cannot find module"):
		return "Try running 'npm install' or 'pip install' to fix missing dependencies."
	case strings.Contains(lower, "permission denied"):
		return "Check file permissions or run with elevated privileges."
	case strings.Contains(lower, "connection refused"):
		return "Ensure that all dependent services (databases, APIs) are running."
	}
	return ""
}
