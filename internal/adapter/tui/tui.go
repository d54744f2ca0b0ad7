package tui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// A sink hands messages to the program once it exists.
type sink struct {
	p atomic.Pointer[tea.Program]
}

func (s *sink) Send(msg tea.Msg) {
	if p := s.p.Load(); p != nil {
		p.Send(msg)
	}
}

// Run shows the terminal client until the user quits or ctx is done.
func Run(ctx context.Context, opener SessionOpener, opts ...tea.ProgramOption) error {
	const op = "tui.Run"

	var s sink
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(NewModel(opener, s.Send), opts...)
	s.p.Store(p)

	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.CloseSession()
	}

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
