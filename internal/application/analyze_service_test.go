package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch1kim0n1/HackSentinel/internal/application"
	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

type fakeDetector struct {
	det domain.Detection
	err error
}

func (f *fakeDetector) Detect(string) (domain.Detection, error) { return f.det, f.err }

type fakeDiscoverer struct {
	result domain.DiscoveryResult
}

func (f *fakeDiscoverer) Discover(string, domain.Detection, []string) (domain.DiscoveryResult, error) {
	return f.result, nil
}

// fakeRunner returns canned results per label and records effective
// timeouts. Optionally burns wall-clock time per run to exercise the
// global deadline.
type fakeRunner struct {
	results  map[string]domain.ExecutionResult
	timeouts []time.Duration
	delay    time.Duration
}

func (f *fakeRunner) Run(_ context.Context, ep domain.EntryPoint, timeout time.Duration) domain.ExecutionResult {
	f.timeouts = append(f.timeouts, timeout)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if res, ok := f.results[ep.Label]; ok {
		res.EntryPoint = ep
		return res
	}
	code := 0
	return domain.ExecutionResult{EntryPoint: ep, State: domain.StateCompleted, ExitCode: &code}
}

type fakeGitInfo struct {
	isRepo      bool
	hash        string
	commitCalls int
}

func (f *fakeGitInfo) IsGitRepo(string) bool { return f.isRepo }

func (f *fakeGitInfo) CommitHash(string) (string, error) {
	f.commitCalls++
	return f.hash, nil
}

func entries(labels ...string) []domain.EntryPoint {
	eps := make([]domain.EntryPoint, len(labels))
	for i, l := range labels {
		eps[i] = domain.EntryPoint{Label: l, Command: []string{"run", l}}
	}
	return eps
}

func newService(det *fakeDetector, disc *fakeDiscoverer, runner *fakeRunner) *application.AnalyzeService {
	return application.NewAnalyzeService(det, disc, runner, nil, nil, nil)
}

func nodeDetector() *fakeDetector {
	return &fakeDetector{det: domain.Detection{Type: domain.ProjectNodeJS, MarkerPath: "package.json"}}
}

func TestAnalyze_CleanRun(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a", "b")}}, runner)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, domain.ProjectNodeJS, res.ProjectType)
	assert.Len(t, res.ExecutionResults, 2)
	assert.Empty(t, res.Bugs)
	assert.False(t, res.DeadlineExceeded)
	assert.Len(t, runner.timeouts, 2)
}

func TestAnalyze_ClassifiesFailures(t *testing.T) {
	code := 3
	runner := &fakeRunner{results: map[string]domain.ExecutionResult{
		"b": {State: domain.StateCompleted, ExitCode: &code},
		"c": {State: domain.StateTimedOut, TimedOut: true},
	}}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a", "b", "c")}}, runner)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	require.Len(t, res.Bugs, 2)
	// HIGH (exit code) ranks above MEDIUM (timeout) after sorting.
	assert.Equal(t, domain.SeverityHigh, res.Bugs[0].Severity)
	assert.Equal(t, domain.SeverityMedium, res.Bugs[1].Severity)
}

func TestAnalyze_BugOrderIsStableWithinSeverity(t *testing.T) {
	codeB, codeD := 2, 5
	runner := &fakeRunner{results: map[string]domain.ExecutionResult{
		"b": {State: domain.StateCompleted, ExitCode: &codeB},
		"d": {State: domain.StateCompleted, ExitCode: &codeD},
	}}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a", "b", "c", "d")}}, runner)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	require.Len(t, res.Bugs, 2)
	assert.Equal(t, "run b", res.Bugs[0].Reproduction)
	assert.Equal(t, "run d", res.Bugs[1].Reproduction)
}

func TestAnalyze_GlobalDeadlineSkipsRemaining(t *testing.T) {
	runner := &fakeRunner{delay: 60 * time.Millisecond}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a", "b", "c", "d", "e")}}, runner)

	cfg := domain.DefaultAnalysisConfig()
	cfg.GlobalDeadline = 100 * time.Millisecond
	cfg.PerEntryTimeout = 50 * time.Millisecond

	res, err := svc.Analyze(context.Background(), "/tmp/p", cfg)
	require.NoError(t, err)

	assert.True(t, res.DeadlineExceeded)
	assert.Less(t, len(runner.timeouts), 5, "not every entry may run")
	assert.Len(t, res.ExecutionResults, len(runner.timeouts),
		"skipped entries never appear in the result list")
	assert.Empty(t, res.Bugs, "a skip is not a bug")

	var skipLogs int
	for _, e := range res.DiagnosticLog {
		if strings.Contains(e.Message, "skipped (global deadline reached)") {
			skipLogs++
		}
	}
	assert.Equal(t, 5-len(runner.timeouts), skipLogs)
}

func TestAnalyze_EffectiveTimeoutShrinksNearDeadline(t *testing.T) {
	runner := &fakeRunner{delay: 30 * time.Millisecond}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a", "b")}}, runner)

	cfg := domain.DefaultAnalysisConfig()
	cfg.GlobalDeadline = 80 * time.Millisecond
	cfg.PerEntryTimeout = 10 * time.Second

	_, err := svc.Analyze(context.Background(), "/tmp/p", cfg)
	require.NoError(t, err)

	require.NotEmpty(t, runner.timeouts)
	for _, to := range runner.timeouts {
		assert.LessOrEqual(t, to, 80*time.Millisecond, "effective timeout never exceeds the remaining global deadline")
	}
}

func TestAnalyze_SafeModeExecutesNothing(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a", "b")}}, runner)

	cfg := domain.DefaultAnalysisConfig()
	cfg.SafeMode = true

	res, err := svc.Analyze(context.Background(), "/tmp/p", cfg)
	require.NoError(t, err)

	assert.Empty(t, runner.timeouts, "safe mode must not spawn anything")
	assert.Empty(t, res.ExecutionResults)
	assert.Len(t, res.EntryPoints, 2)
	assert.True(t, res.SafeMode)
}

func TestAnalyze_NoEntryPoints(t *testing.T) {
	svc := newService(nodeDetector(), &fakeDiscoverer{}, &fakeRunner{})

	_, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	assert.ErrorIs(t, err, domain.ErrNoEntryPointsFound)
}

func TestAnalyze_DetectorErrorPropagates(t *testing.T) {
	det := &fakeDetector{err: domain.ErrDirectoryNotFound}
	svc := newService(det, &fakeDiscoverer{}, &fakeRunner{})

	_, err := svc.Analyze(context.Background(), "/missing", domain.DefaultAnalysisConfig())
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestAnalyze_InvalidConfigRejected(t *testing.T) {
	svc := newService(nodeDetector(), &fakeDiscoverer{}, &fakeRunner{})

	cfg := domain.DefaultAnalysisConfig()
	cfg.PerEntryTimeout = 0

	_, err := svc.Analyze(context.Background(), "/tmp/p", cfg)
	assert.Error(t, err)
}

func TestAnalyze_DiagnosticLogCoversPhases(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a"), Warnings: []string{"manifest degraded"}}}, runner)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	var messages []string
	for _, e := range res.DiagnosticLog {
		messages = append(messages, e.Message)
	}
	joined := ""
	for _, m := range messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "detected project type: nodejs")
	assert.Contains(t, joined, "warning: manifest degraded")
	assert.Contains(t, joined, "discovered 1 entry points")
	assert.Contains(t, joined, "running a: run a")
}

func TestAnalyze_CommitHashFromGitRepo(t *testing.T) {
	git := &fakeGitInfo{isRepo: true, hash: "abc1234"}
	svc := application.NewAnalyzeService(
		nodeDetector(),
		&fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a")}},
		&fakeRunner{},
		git, nil, nil,
	)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.Equal(t, "abc1234", res.CommitHash)
	assert.Equal(t, 1, git.commitCalls)
}

func TestAnalyze_NonGitDirSkipsCommitLookup(t *testing.T) {
	git := &fakeGitInfo{isRepo: false, hash: "must-not-appear"}
	svc := application.NewAnalyzeService(
		nodeDetector(),
		&fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a")}},
		&fakeRunner{},
		git, nil, nil,
	)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.Empty(t, res.CommitHash)
	assert.Zero(t, git.commitCalls, "commit lookup is skipped outside a work tree")

	joined := ""
	for _, e := range res.DiagnosticLog {
		joined += e.Message + "\n"
	}
	assert.Contains(t, joined, "not a git repository")
}

func TestAnalyze_CanceledRunProducesNoBug(t *testing.T) {
	runner := &fakeRunner{results: map[string]domain.ExecutionResult{
		"a": {State: domain.StateCanceled, ExecError: "context canceled", Stderr: "error: cut short\n"},
	}}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a")}}, runner)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	assert.Empty(t, res.Bugs, "an interrupted run must not fabricate findings")
	require.Len(t, res.ExecutionResults, 1)
	assert.Equal(t, domain.StateCanceled, res.ExecutionResults[0].State)
}

func TestAnalyze_ExecutionFaultBecomesHighFinding(t *testing.T) {
	runner := &fakeRunner{results: map[string]domain.ExecutionResult{
		"a": {State: domain.StateFailed, ExecError: "wait: no child processes"},
	}}
	svc := newService(nodeDetector(), &fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a")}}, runner)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	require.Len(t, res.Bugs, 1)
	assert.Equal(t, domain.KindExecutionError, res.Bugs[0].Kind)
	assert.Equal(t, domain.SeverityHigh, res.Bugs[0].Severity)
}

func TestAnalyze_ProgressCallbackReceivesEntries(t *testing.T) {
	var got []string
	svc := application.NewAnalyzeService(
		nodeDetector(),
		&fakeDiscoverer{result: domain.DiscoveryResult{EntryPoints: entries("a")}},
		&fakeRunner{},
		nil,
		nil,
		func(e domain.DiagnosticEntry) { got = append(got, e.Message) },
	)

	res, err := svc.Analyze(context.Background(), "/tmp/p", domain.DefaultAnalysisConfig())
	require.NoError(t, err)

	require.Len(t, got, len(res.DiagnosticLog))
	assert.Equal(t, res.DiagnosticLog[0].Message, got[0])
}
