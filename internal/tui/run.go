package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the viewer until the user quits, ctx ends, or the session closes.
func Run(ctx context.Context, src Controller, opts Options) error {
	program := tea.NewProgram(New(ctx, src, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
