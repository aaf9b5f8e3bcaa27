package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
	"github.com/ch1kim0n1/HackSentinel/internal/domain/classify"
)

// ProgressFunc receives each diagnostic entry as it is logged. The CLI
// uses it to stream progress to stderr; pass nil to disable.
type ProgressFunc func(domain.DiagnosticEntry)

// AnalyzeService orchestrates the analysis pipeline:
// detect project type → discover entry points → execute each under the
// time budgets → classify outcomes → assemble the ranked report.
type AnalyzeService struct {
	detector   domain.ProjectDetector
	discoverer domain.EntryPointDiscoverer
	runner     domain.EntryPointRunner
	gitInfo    domain.GitInfo
	history    domain.RunHistory
	progress   ProgressFunc

	now func() time.Time
}

func NewAnalyzeService(
	detector domain.ProjectDetector,
	discoverer domain.EntryPointDiscoverer,
	runner domain.EntryPointRunner,
	gitInfo domain.GitInfo,
	history domain.RunHistory,
	progress ProgressFunc,
) *AnalyzeService {
	return &AnalyzeService{
		detector:   detector,
		discoverer: discoverer,
		runner:     runner,
		gitInfo:    gitInfo,
		history:    history,
		progress:   progress,
		now:        time.Now,
	}
}

func (s *AnalyzeService) Analyze(ctx context.Context, targetDir string, cfg domain.AnalysisConfig) (*domain.AnalysisResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := s.now()
	res := &domain.AnalysisResult{
		RunID:     uuid.NewString(),
		TargetDir: targetDir,
		SafeMode:  cfg.SafeMode,
		StartedAt: started,
	}
	log := func(format string, args ...any) {
		entry := domain.DiagnosticEntry{
			Timestamp: s.now(),
			Message:   fmt.Sprintf(format, args...),
		}
		res.DiagnosticLog = append(res.DiagnosticLog, entry)
		if s.progress != nil {
			s.progress(entry)
		}
	}

	// 1. Detect project type from marker files
	detection, err := s.detector.Detect(targetDir)
	if err != nil {
		return nil, err
	}
	res.ProjectType = detection.Type
	res.MarkerPath = detection.MarkerPath
	log("detected project type: %s (%s)", detection.Type, detection.MarkerPath)

	// 2. Discover entry points
	disc, err := s.discoverer.Discover(targetDir, detection, cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	for _, w := range disc.Warnings {
		log("warning: %s", w)
	}
	if disc.Excluded > 0 {
		log("excluded %d entry points by pattern", disc.Excluded)
	}
	if len(disc.EntryPoints) == 0 {
		return nil, domain.ErrNoEntryPointsFound
	}
	res.EntryPoints = disc.EntryPoints
	log("discovered %d entry points", len(disc.EntryPoints))

	// 3. Execute (unless safe mode) and classify
	if cfg.SafeMode {
		log("safe mode: skipping execution of all entry points")
	} else {
		s.executeAll(ctx, res, cfg, started, log)
	}

	// 4. Rank findings by severity, preserving discovery order within a tier
	domain.SortBugs(res.Bugs)
	res.TotalDurationMs = s.now().Sub(started).Milliseconds()

	// 5. Attach commit hash and record the run. Both are best effort.
	if s.gitInfo != nil {
		if !s.gitInfo.IsGitRepo(targetDir) {
			log("not a git repository: skipping commit hash")
		} else if hash, err := s.gitInfo.CommitHash(targetDir); err == nil {
			res.CommitHash = hash
		}
	}
	if s.history != nil && !cfg.SafeMode {
		entry := domain.RunEntry{
			Timestamp:   started.Format(time.RFC3339),
			CommitHash:  res.CommitHash,
			ProjectType: res.ProjectType,
			TotalBugs:   len(res.Bugs),
			BySeverity:  nonZeroCounts(res),
		}
		if err := s.history.Save(targetDir, entry); err != nil {
			log("warning: could not record run history: %v", err)
		}
	}

	return res, nil
}

func (s *AnalyzeService) executeAll(ctx context.Context, res *domain.AnalysisResult, cfg domain.AnalysisConfig, started time.Time, log func(string, ...any)) {
	classifier := classify.New(cfg.PerEntryTimeout)
	deadline := started.Add(cfg.GlobalDeadline)

	for i, ep := range res.EntryPoints {
		if ctx.Err() != nil {
			for _, skipped := range res.EntryPoints[i:] {
				log("skipped (run canceled): %s", skipped.Label)
			}
			return
		}

		remaining := deadline.Sub(s.now())
		if remaining <= 0 {
			// A skip is an operational fact, not a defect: it appears
			// in the diagnostic log only, never as a result or a bug.
			res.DeadlineExceeded = true
			for _, skipped := range res.EntryPoints[i:] {
				log("skipped (global deadline reached): %s", skipped.Label)
			}
			return
		}

		timeout := cfg.PerEntryTimeout
		if remaining < timeout {
			timeout = remaining
		}

		log("running %s: %s", ep.Label, ep.CommandLine())
		result := s.runner.Run(ctx, ep, timeout)
		res.ExecutionResults = append(res.ExecutionResults, result)

		switch result.State {
		case domain.StateTimedOut:
			log("timed out after %dms: %s", result.DurationMs, ep.Label)
		case domain.StateSpawnFailed:
			log("failed to start: %s (%s)", ep.Label, result.SpawnError)
		case domain.StateFailed:
			log("execution failed: %s (%s)", ep.Label, result.ExecError)
		case domain.StateCanceled:
			log("canceled: %s", ep.Label)
		default:
			log("finished in %dms: %s", result.DurationMs, ep.Label)
		}

		if bug := classifier.Classify(result); bug != nil {
			res.Bugs = append(res.Bugs, *bug)
		}
	}
}

func nonZeroCounts(res *domain.AnalysisResult) map[domain.Severity]int {
	counts := make(map[domain.Severity]int)
	for sev, n := range res.SeverityCounts() {
		if n > 0 {
			counts[sev] = n
		}
	}
	return counts
}
