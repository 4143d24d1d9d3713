package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daylist/daylist/internal/session"
)

// RunListTUI starts the interactive task list for sess
func RunListTUI(store TaskStore, sess session.Session, now func() time.Time) error {
	model := NewListModel(store, sess, now)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := finalModel.(ListModel); ok && m.Err() != nil {
		return fmt.Errorf("last action failed: %w", m.Err())
	}
	return nil
}
