package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkamanzi/farepulse/internal/service"
)

// Run opens the misinformation review queue and blocks until the
// reviewer quits or the context is canceled.
func Run(ctx context.Context, store service.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}

	p := tea.NewProgram(New(store), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("review queue ui: %w", err)
	}

	if m, ok := final.(Model); ok {
		if m.err != nil {
			return m.err
		}
		slog.Info("Review session finished",
			"resolved", m.resolved,
			"remaining", len(m.items))
	}

	return nil
}
