package report_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/report"
	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		RunID:       "run-1",
		TargetDir:   "/tmp/project",
		ProjectType: domain.ProjectNodeJS,
		StartedAt:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		EntryPoints: []domain.EntryPoint{
			{Label: "main entry point", Command: []string{"node", "index.js"}},
			{Label: "script:buildProd", Command: []string{"npm", "run", "buildProd"}},
		},
		Bugs: []domain.Bug{
			{
				Title:        "Process exited with code 139",
				Kind:         domain.KindNonZeroExit,
				Severity:     domain.SeverityCritical,
				Description:  "'main entry point' terminated with a non-zero exit code.",
				Reproduction: "node index.js",
				Output:       "Segmentation fault",
			},
			{
				Title:          "Found \"warning\" in output",
				Kind:           domain.KindErrorPattern,
				Severity:       domain.SeverityMedium,
				Description:    "deprecation warning",
				Reproduction:   "npm run buildProd",
				Recommendation: "Upgrade the dependency.",
			},
		},
		DiagnosticLog: []domain.DiagnosticEntry{
			{Timestamp: time.Date(2026, 8, 29, 10, 0, 1, 0, time.UTC), Message: "detected project type: nodejs"},
		},
		TotalDurationMs: 2500,
	}
}

func TestMarkdown_GroupsBySeverity(t *testing.T) {
	md := report.Markdown(sampleResult())

	criticalIdx := strings.Index(md, "### CRITICAL Severity")
	mediumIdx := strings.Index(md, "### MEDIUM Severity")
	require.NotEqual(t, -1, criticalIdx)
	require.NotEqual(t, -1, mediumIdx)
	assert.Less(t, criticalIdx, mediumIdx)

	assert.NotContains(t, md, "### HIGH Severity", "empty severity groups are omitted")
}

func TestMarkdown_IncludesReproductionAndRecommendation(t *testing.T) {
	md := report.Markdown(sampleResult())

	assert.Contains(t, md, "```bash\nnode index.js\n```")
	assert.Contains(t, md, "> Upgrade the dependency.")
	assert.Contains(t, md, "**CRITICAL:** 1")
	assert.Contains(t, md, "**MEDIUM:** 1")
}

func TestMarkdown_NoBugs(t *testing.T) {
	res := sampleResult()
	res.Bugs = nil

	md := report.Markdown(res)
	assert.Contains(t, md, "**No bugs detected.**")
	assert.NotContains(t, md, "## Detailed Findings")
}

func TestMarkdown_SafeMode(t *testing.T) {
	res := sampleResult()
	res.SafeMode = true

	md := report.Markdown(res)
	assert.Contains(t, md, "Safe mode: 2 entry points discovered, none executed.")
}

func TestMarkdown_DiagnosticLog(t *testing.T) {
	md := report.Markdown(sampleResult())
	assert.Contains(t, md, "[10:00:01.000] detected project type: nodejs")
}

func TestJSON_SummaryCounts(t *testing.T) {
	out, err := report.JSON(sampleResult())
	require.NoError(t, err)

	var parsed struct {
		Tool    string `json:"tool"`
		Summary struct {
			TotalBugs  int            `json:"total_bugs"`
			BySeverity map[string]int `json:"by_severity"`
		} `json:"summary"`
		Result struct {
			RunID string `json:"run_id"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))

	assert.Equal(t, "sentinel", parsed.Tool)
	assert.Equal(t, 2, parsed.Summary.TotalBugs)
	assert.Equal(t, 1, parsed.Summary.BySeverity["CRITICAL"])
	assert.Equal(t, "run-1", parsed.Result.RunID)
}

func TestHumanizeLabel(t *testing.T) {
	assert.Equal(t, "script: build prod", report.HumanizeLabel("script:buildProd"))
	assert.Equal(t, "module: tool", report.HumanizeLabel("module:tool"))
	assert.Equal(t, "main entry point", report.HumanizeLabel("main entry point"))
}

func TestRedact_MaskSecretValues(t *testing.T) {
	in := "API_KEY=sk-live-abc123 password: hunter2 plain=value"
	out := report.Redact(in)

	assert.Contains(t, out, "API_KEY=[REDACTED]")
	assert.Contains(t, out, "password: [REDACTED]")
	assert.Contains(t, out, "plain=value")
	assert.NotContains(t, out, "sk-live-abc123")
	assert.NotContains(t, out, "hunter2")
}

func TestRedact_LeavesCleanTextAlone(t *testing.T) {
	in := "no credentials here, just logs\n"
	assert.Equal(t, in, report.Redact(in))
}
