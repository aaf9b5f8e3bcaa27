// Package report renders an AnalysisResult into user-facing artifacts.
// Renderers preserve severity grouping order, emit one finding block per
// bug, and list the diagnostic log chronologically.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// Markdown renders the full bug report. Secrets are redacted by the
// caller after rendering so redaction covers every format uniformly.
func Markdown(res *domain.AnalysisResult) string {
	var b strings.Builder

	b.WriteString("# Sentinel Bug Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** `%s`\n", res.RunID)
	fmt.Fprintf(&b, "**Target Directory:** `%s`\n", res.TargetDir)
	fmt.Fprintf(&b, "**Project Type:** %s\n", res.ProjectType)
	if res.CommitHash != "" {
		fmt.Fprintf(&b, "**Commit:** `%s`\n", res.CommitHash)
	}
	fmt.Fprintf(&b, "**Analysis Date:** %s\n", res.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Analysis Duration:** %.2fs\n\n", float64(res.TotalDurationMs)/1000)

	writeSummary(&b, res)
	writeFindings(&b, res)
	writeEntryPoints(&b, res)
	writeDiagnostics(&b, res)

	b.WriteString("---\n*Generated by Sentinel - Local Bug Discovery Tool*\n")
	return b.String()
}

func writeSummary(b *strings.Builder, res *domain.AnalysisResult) {
	b.WriteString("## Summary\n\n")

	if res.SafeMode {
		fmt.Fprintf(b, "Safe mode: %d entry points discovered, none executed.\n\n", len(res.EntryPoints))
		return
	}

	if len(res.Bugs) == 0 {
		b.WriteString("**No bugs detected.**\n\n")
		b.WriteString("Every executed entry point finished without a detected failure.\n\n")
		return
	}

	counts := res.SeverityCounts()
	fmt.Fprintf(b, "Found **%d** potential bug(s):\n\n", len(res.Bugs))
	for _, sev := range domain.Severities {
		if counts[sev] > 0 {
			fmt.Fprintf(b, "- **%s:** %d\n", sev, counts[sev])
		}
	}
	b.WriteString("\n")
}

func writeFindings(b *strings.Builder, res *domain.AnalysisResult) {
	if len(res.Bugs) == 0 {
		return
	}

	b.WriteString("## Detailed Findings\n\n")

	for _, sev := range domain.Severities {
		var group []domain.Bug
		for _, bug := range res.Bugs {
			if bug.Severity == sev {
				group = append(group, bug)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(b, "### %s Severity\n\n", sev)
		for i, bug := range group {
			fmt.Fprintf(b, "#### Bug #%d: %s\n\n", i+1, bug.Title)
			fmt.Fprintf(b, "**Type:** `%s`\n\n", bug.Kind)
			fmt.Fprintf(b, "**Description:**\n\n%s\n\n", bug.Description)
			fmt.Fprintf(b, "**Reproduction:**\n\n```bash\n%s\n```\n\n", bug.Reproduction)
			if bug.Recommendation != "" {
				fmt.Fprintf(b, "**Recommendation:**\n\n> %s\n\n", bug.Recommendation)
			}
			if bug.Output != "" {
				fmt.Fprintf(b, "**Output:**\n\n```\n%s\n```\n\n", bug.Output)
			}
			b.WriteString("---\n\n")
		}
	}
}

func writeEntryPoints(b *strings.Builder, res *domain.AnalysisResult) {
	if len(res.EntryPoints) == 0 {
		return
	}

	b.WriteString("## Entry Points\n\n")
	for _, ep := range res.EntryPoints {
		fmt.Fprintf(b, "- %s — `%s`\n", HumanizeLabel(ep.Label), ep.CommandLine())
	}
	b.WriteString("\n")
}

func writeDiagnostics(b *strings.Builder, res *domain.AnalysisResult) {
	b.WriteString("## Diagnostic Log\n\n```\n")
	for _, entry := range res.DiagnosticLog {
		fmt.Fprintf(b, "[%s] %s\n", entry.Timestamp.Format("15:04:05.000"), entry.Message)
	}
	b.WriteString("```\n\n")
}

// HumanizeLabel makes machine labels readable: the camelCase part of
// "script:buildProd" becomes "script: build prod".
func HumanizeLabel(label string) string {
	prefix, name, found := strings.Cut(label, ":")
	if !found {
		return label
	}

	words := camelcase.Split(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return prefix + ": " + strings.Join(words, " ")
}
