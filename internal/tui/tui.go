// Package tui is the terminal front end: an interactive trip planner and
// lipgloss renderings of the generated log sheets.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunPlanner runs the planning surface full screen until the user quits.
func RunPlanner(ctx context.Context, p Planner, feed SuggestionFeed) error {
	m := NewPlannerModel(ctx, p, feed)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui.RunPlanner: %w", err)
	}
	return nil
}
