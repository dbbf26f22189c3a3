package crash

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

func renderView(report Report, s styles) string {
	lines := []string{
		s.title.Render("Script Failed"),
		s.header.Render(fmt.Sprintf("session: %s", sessionLabel(report.SessionID))),
		s.section.Render(renderScript(report, s)),
	}

	lines = append(lines, s.section.Render(renderTail(report.StderrTail, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderScript(report Report, s styles) string {
	parts := []string{
		s.script.Render(report.Script.Name),
		s.detail.Render(report.Script.Path),
		s.warning.Render(exitLabel(report.Exit)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderTail(tail []string, s styles) string {
	if len(tail) == 0 {
		return s.empty.Render("No stderr output captured.")
	}

	parts := make([]string, 0, len(tail)+1)
	parts = append(parts, s.tailKey.Render(fmt.Sprintf("stderr (last %d lines):", len(tail))))
	for _, line := range tail {
		parts = append(parts, s.tail.Render("  "+line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func exitLabel(exit domain.ExitStatus) string {
	switch exit.Reason {
	case domain.ExitKilled:
		return "killed by host"
	case domain.ExitCrashed:
		return fmt.Sprintf("crashed with exit code %d", exit.Code)
	default:
		return fmt.Sprintf("exited with code %d", exit.Code)
	}
}

func sessionLabel(id string) string {
	if id == "" {
		return "unknown"
	}

	return id
}
