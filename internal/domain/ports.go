package domain

import (
	"context"
	"time"
)

// ProjectDetector classifies a target directory into a ProjectType by
// scanning its immediate contents for marker files.
type ProjectDetector interface {
	Detect(targetDir string) (Detection, error)
}

// DiscoveryResult is the ordered, deduplicated output of entry-point
// discovery. Warnings carry non-fatal degradations (e.g. an unparsable
// manifest) for the diagnostic log.
type DiscoveryResult struct {
	EntryPoints []EntryPoint
	Warnings    []string
	Excluded    int
}

// EntryPointDiscoverer enumerates runnable entry points for a detected
// project type. Entries matching an exclude glob are dropped before the
// list is returned.
type EntryPointDiscoverer interface {
	Discover(targetDir string, det Detection, excludePatterns []string) (DiscoveryResult, error)
}

// EntryPointRunner executes one entry point as an isolated subprocess
// under the given timeout. It never returns an error: spawn failures and
// timeouts are recorded on the ExecutionResult itself.
type EntryPointRunner interface {
	Run(ctx context.Context, ep EntryPoint, timeout time.Duration) ExecutionResult
}

// ServerProbe checks whether a locally started web server answers on any
// of the given ports.
type ServerProbe interface {
	Probe(ports []int) ProbeResult
}

// ConfigLoader reads per-project configuration (.sentinel.yaml).
type ConfigLoader interface {
	Load(projectPath string) (AnalysisConfig, error)
}

// GitInfo reports version-control facts about the target project.
type GitInfo interface {
	// IsGitRepo reports whether the project sits inside a git work tree.
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}

// RunEntry is one line of the per-project run history.
type RunEntry struct {
	Timestamp   string           `json:"timestamp"`
	CommitHash  string           `json:"commit_hash,omitempty"`
	ProjectType ProjectType      `json:"project_type"`
	TotalBugs   int              `json:"total_bugs"`
	BySeverity  map[Severity]int `json:"by_severity,omitempty"`
}

// RunHistory persists run summaries per project.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}
