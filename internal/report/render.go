// Package report turns a ComparisonReport into human- and machine-readable
// output: a styled console summary and a pretty-printed JSON file.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"spriteforge/internal/pipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	winnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	scoreFormat  = "%.1f/10"
	maxScoreRank = 10.0
)

// Render formats the comparison report for the terminal.
func Render(r pipeline.ComparisonReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Asset generation comparison"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s · %s", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))
	b.WriteString("\n\n")

	best := bestApproach(r)
	for _, approach := range r.Approaches {
		b.WriteString(renderApproach(approach, best == approach.Label))
		b.WriteString("\n")
	}

	if best != "" {
		b.WriteString(winnerStyle.Render(fmt.Sprintf("Highest consistency: approach %s", best)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderApproach(a pipeline.ApproachResult, winner bool) string {
	var body strings.Builder

	header := fmt.Sprintf("%s  %s  %s", labelStyle.Render(a.Label), a.Name, mutedStyle.Render(a.Model))
	body.WriteString(header)
	body.WriteString("\n")

	score := fmt.Sprintf(scoreFormat, a.Score)
	summary := fmt.Sprintf("%d/%d assets · score %s", a.Successes(), len(a.Outcomes), score)
	if winner && a.Score >= maxScoreRank {
		summary += "  " + okStyle.Render("complete")
	}
	body.WriteString(summary)
	body.WriteString("\n")

	for _, o := range a.Outcomes {
		if o.Success() {
			body.WriteString(fmt.Sprintf("  %s %s  %s\n",
				okStyle.Render("✓"), o.Task,
				mutedStyle.Render(fmt.Sprintf("%dx%d · %d bytes", o.Asset.Width, o.Asset.Height, o.Asset.Size))))
		} else {
			body.WriteString(fmt.Sprintf("  %s %s  %s\n",
				failStyle.Render("✗"), o.Task, mutedStyle.Render(o.FailureReason)))
		}
	}

	return panelStyle.Render(strings.TrimRight(body.String(), "\n"))
}

// bestApproach returns the label of the highest-scoring approach, preferring
// the earlier approach on ties. Empty when there are no approaches.
func bestApproach(r pipeline.ComparisonReport) string {
	best := ""
	bestScore := -1.0
	for _, a := range r.Approaches {
		if a.Score > bestScore {
			best = a.Label
			bestScore = a.Score
		}
	}
	return best
}
