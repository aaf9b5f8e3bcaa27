package domain

import (
	"sort"
	"strings"
	"time"
)

// ProjectType classifies the target directory by its marker files.
type ProjectType string

const (
	ProjectNodeJS     ProjectType = "nodejs"
	ProjectPython     ProjectType = "python"
	ProjectGo         ProjectType = "go"
	ProjectRust       ProjectType = "rust"
	ProjectJavaMaven  ProjectType = "java-maven"
	ProjectJavaGradle ProjectType = "java-gradle"
	ProjectMakefile   ProjectType = "makefile"
	ProjectGeneric    ProjectType = "generic"
)

// Detection is the outcome of project-type detection. MarkerPath is the
// marker file that decided the type, kept for diagnostics; empty for the
// generic fallback.
type Detection struct {
	Type       ProjectType `json:"type"`
	MarkerPath string      `json:"marker_path,omitempty"`
}

// EntryPoint is one discovered, runnable command of the target project.
// Identity is the (Label, Command) pair; discovery deduplicates on it.
type EntryPoint struct {
	Label      string   `json:"label"`
	Command    []string `json:"command"`
	WorkingDir string   `json:"working_dir"`
}

// CommandLine renders the argv as a single reproduction string.
func (e EntryPoint) CommandLine() string {
	return strings.Join(e.Command, " ")
}

// Key is the deduplication identity of an entry point.
func (e EntryPoint) Key() string {
	return e.Label + "\x00" + strings.Join(e.Command, "\x00")
}

// EntryState tracks the per-entry lifecycle:
// Pending → Running → {Completed | TimedOut | SpawnFailed | Failed |
// Canceled | Skipped}. Skipped is reachable only from Pending, via
// global-deadline exhaustion. Failed means the process started but could
// not be waited on or captured; Canceled means the whole run was
// interrupted while the entry was running.
type EntryState string

const (
	StatePending     EntryState = "pending"
	StateRunning     EntryState = "running"
	StateCompleted   EntryState = "completed"
	StateTimedOut    EntryState = "timed_out"
	StateSpawnFailed EntryState = "spawn_failed"
	StateFailed      EntryState = "failed"
	StateCanceled    EntryState = "canceled"
	StateSkipped     EntryState = "skipped"
)

// ProbeResult records a live web-server probe performed against a
// server-style entry point during its startup grace period.
type ProbeResult struct {
	Alive      bool   `json:"alive"`
	Port       int    `json:"port,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ExecutionResult is the immutable record of one entry-point execution.
// ExitCode is nil when the process never produced one (spawn failure,
// forced termination on timeout, or cancellation); a signal-killed
// process records the shell convention 128+signal. Stdout/Stderr are
// bounded; a truncation marker is appended when the capture cap was hit.
// SpawnError is set only when the process never started; ExecError when
// it started but could not be executed to completion.
type ExecutionResult struct {
	EntryPoint EntryPoint   `json:"entry_point"`
	State      EntryState   `json:"state"`
	Stdout     string       `json:"stdout,omitempty"`
	Stderr     string       `json:"stderr,omitempty"`
	ExitCode   *int         `json:"exit_code,omitempty"`
	DurationMs int64        `json:"duration_ms"`
	TimedOut   bool         `json:"timed_out"`
	SpawnError string       `json:"spawn_error,omitempty"`
	ExecError  string       `json:"exec_error,omitempty"`
	Probe      *ProbeResult `json:"probe,omitempty"`
}

// CombinedOutput joins both captured streams for pattern matching.
func (r ExecutionResult) CombinedOutput() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// RelevantOutput is the stream attached to a finding: full stderr when
// non-empty, otherwise stdout.
func (r ExecutionResult) RelevantOutput() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Severity ranks findings. The order CRITICAL > HIGH > MEDIUM > LOW is
// total and used for sorting and tie-breaking.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities enumerates all severities from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank maps a severity to its sort position; lower ranks sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// BugKind identifies which class of rule produced a finding.
type BugKind string

const (
	KindNonZeroExit      BugKind = "non_zero_exit"
	KindErrorPattern     BugKind = "error_pattern"
	KindExecutionError   BugKind = "execution_error"
	KindExecutionTimeout BugKind = "execution_timeout"
	KindLiveProbeFailure BugKind = "live_probe_failure"
)

// Bug is a single classified finding. At most one Bug exists per
// ExecutionResult; Reproduction is the entry point's exact command line.
type Bug struct {
	Title          string   `json:"title"`
	Kind           BugKind  `json:"kind"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Reproduction   string   `json:"reproduction"`
	Output         string   `json:"output,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// DiagnosticEntry is one line of the append-only phase log.
type DiagnosticEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// AnalysisResult is the aggregate produced by one analysis run and the
// single value handed to report renderers.
type AnalysisResult struct {
	RunID            string            `json:"run_id"`
	TargetDir        string            `json:"target_dir"`
	ProjectType      ProjectType       `json:"project_type"`
	MarkerPath       string            `json:"marker_path,omitempty"`
	CommitHash       string            `json:"commit_hash,omitempty"`
	SafeMode         bool              `json:"safe_mode,omitempty"`
	EntryPoints      []EntryPoint      `json:"entry_points"`
	ExecutionResults []ExecutionResult `json:"execution_results"`
	Bugs             []Bug             `json:"bugs"`
	DiagnosticLog    []DiagnosticEntry `json:"diagnostic_log"`
	StartedAt        time.Time         `json:"started_at"`
	TotalDurationMs  int64             `json:"total_duration_ms"`
	DeadlineExceeded bool              `json:"deadline_exceeded"`
}

// SeverityCounts tallies bugs per severity.
func (r *AnalysisResult) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int)
	for _, b := range r.Bugs {
		counts[b.Severity]++
	}
	return counts
}

// SortBugs orders bugs by severity (CRITICAL first). The sort is stable,
// so bugs of equal severity keep their discovery order.
func SortBugs(bugs []Bug) {
	sort.SliceStable(bugs, func(i, j int) bool {
		return bugs[i].Severity.Rank() < bugs[j].Severity.Rank()
	})
}
