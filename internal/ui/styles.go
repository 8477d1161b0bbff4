package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Header renders a title underlined to its own width.
func Header(title string) string {
	return headerStyle.Render(title) + "\n" + strings.Repeat("=", lipgloss.Width(title))
}

// CountLine renders one "label: n" row of the status report. kind selects
// the colour: "done", "pending", "overdue" or "" for none.
func CountLine(label string, n int, kind string) string {
	value := fmt.Sprintf("%d", n)
	switch kind {
	case "done":
		value = doneStyle.Render(value)
	case "pending":
		value = pendingStyle.Render(value)
	case "overdue":
		if n > 0 {
			value = overdueStyle.Render(value)
		}
	}
	return fmt.Sprintf("%-12s %s", label+":", value)
}
