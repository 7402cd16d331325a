package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00879E"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC3333"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Italic(true)
)

func renderQueue(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Clearcast audio preprocessor"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Processing %d file(s)", len(m.Files))))
	b.WriteString("\n\n")

	for _, f := range m.Files {
		b.WriteString(renderFileRow(f))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderCounters(m))
	b.WriteString(subtitleStyle.Render("\nPress q to quit"))
	return b.String()
}

func renderFileRow(f FileState) string {
	name := filepath.Base(f.InputPath)

	switch f.Status {
	case StatusDone:
		line := fmt.Sprintf(" %s %s → %s", okStyle.Render("✓"), name, filepath.Base(f.Result.Output))
		if detail := renderMeasurements(f); detail != "" {
			line += "\n   " + detailStyle.Render(detail)
		}
		if r := f.Result.Report; r != nil {
			for _, w := range r.Warnings {
				line += "\n   " + warningStyle.Render("warning: "+w)
			}
		}
		return line

	case StatusSkipped:
		return fmt.Sprintf(" %s %s (output exists)", skipStyle.Render("•"), name)

	case StatusFailed:
		return fmt.Sprintf(" %s %s\n   %s", failStyle.Render("✗"), name,
			failStyle.Render(fmt.Sprintf("Error: %v", f.Result.Err)))

	case StatusRunning:
		elapsed := time.Since(f.StartTime).Round(time.Second)
		return fmt.Sprintf(" %s %s (%s)", activeStyle.Render("⚙"), name, elapsed)

	default:
		return fmt.Sprintf(" %s %s", skipStyle.Render("○"), name)
	}
}

func renderMeasurements(f FileState) string {
	r := f.Result.Report
	if r == nil {
		return ""
	}
	parts := []string{}
	if r.LoudnessMeasured {
		parts = append(parts, fmt.Sprintf("%.1f LUFS", r.IntegratedLUFS))
	}
	parts = append(parts, fmt.Sprintf("%.1f dBTP", r.TruePeakDB))
	if d := f.Result.Duration; d > 0 {
		parts = append(parts, d.Round(time.Millisecond).String())
	}
	return strings.Join(parts, " | ")
}

func renderCounters(m Model) string {
	return detailStyle.Render(fmt.Sprintf("%d done, %d skipped, %d failed, %d queued",
		m.Completed, m.Skipped, m.Failed,
		len(m.Files)-m.Completed-m.Skipped-m.Failed))
}

func renderSummary(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Clearcast run complete"))
	b.WriteString("\n\n")
	for _, f := range m.Files {
		b.WriteString(renderFileRow(f))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	elapsed := time.Since(m.StartTime).Round(time.Second)
	b.WriteString(subtitleStyle.Render(
		fmt.Sprintf("%d processed, %d skipped, %d failed in %s",
			m.Completed, m.Skipped, m.Failed, elapsed)))
	b.WriteString("\n")
	return b.String()
}
