// Package tui renders a compact terminal summary of an analysis run.
// The full report lives in the Markdown/JSON renderers; this is the
// at-a-glance view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(60)

	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	faintStyle = lipgloss.NewStyle().Foreground(faint)
	passStyle  = lipgloss.NewStyle().Foreground(success)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(fg)

	severityStyles = map[domain.Severity]lipgloss.Style{
		domain.SeverityCritical: lipgloss.NewStyle().Foreground(danger).Bold(true),
		domain.SeverityHigh:     lipgloss.NewStyle().Foreground(danger),
		domain.SeverityMedium:   lipgloss.NewStyle().Foreground(warning),
		domain.SeverityLow:      lipgloss.NewStyle().Foreground(info),
	}

	separatorLine = faintStyle.Render(strings.Repeat("─", 56))
)

// RenderSummary formats the run header, severity counts and top
// findings for terminal output.
func RenderSummary(res *domain.AnalysisResult) string {
	var b strings.Builder

	title := headerStyle.Render("sentinel")
	subtitle := dimStyle.Render(fmt.Sprintf("%s · %d entry points · %.1fs",
		res.ProjectType, len(res.EntryPoints), float64(res.TotalDurationMs)/1000))

	var headline string
	if res.SafeMode {
		headline = dimStyle.Render("safe mode — nothing executed")
	} else if len(res.Bugs) == 0 {
		headline = passStyle.Render("no bugs detected")
	} else {
		headline = severityStyles[res.Bugs[0].Severity].Render(
			fmt.Sprintf("%d potential bugs", len(res.Bugs)))
	}

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + headline))
	b.WriteString("\n\n")

	if len(res.Bugs) > 0 {
		counts := res.SeverityCounts()
		b.WriteString("  ")
		b.WriteString(titleStyle.Render("Findings"))
		b.WriteString("  ")
		for _, sev := range domain.Severities {
			if counts[sev] == 0 {
				continue
			}
			b.WriteString(severityStyles[sev].Render(fmt.Sprintf("%d %s", counts[sev], strings.ToLower(string(sev)))))
			b.WriteString("  ")
		}
		b.WriteString("\n\n")

		for _, bug := range res.Bugs {
			renderBug(&b, bug)
		}
		b.WriteString("\n  " + separatorLine + "\n")
	}

	if res.DeadlineExceeded {
		b.WriteString("  " + dimStyle.Render("global deadline reached — remaining entry points skipped") + "\n")
	}

	return b.String()
}

func renderBug(b *strings.Builder, bug domain.Bug) {
	tag := severityStyles[bug.Severity].Render(padRight(strings.ToLower(string(bug.Severity)), 8))
	fmt.Fprintf(b, "    %s %s\n", tag, titleStyle.Render(bug.Title))
	fmt.Fprintf(b, "             %s\n", dimStyle.Render(bug.Reproduction))
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
