package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

type countdownMsg entity.Countdown

type watchErrMsg struct{ err error }

// countdownModel renders the tracking screen and quits once delivered.
type countdownModel struct {
	order     entity.Order
	tracking  *service.TrackingService
	steps     []entity.TrackingStep
	countdown entity.Countdown
	err       error
}

func newCountdownModel(order entity.Order, tracking *service.TrackingService) countdownModel {
	return countdownModel{
		order:     order,
		tracking:  tracking,
		steps:     tracking.DeriveSteps(order),
		countdown: tracking.RemainingTime(order),
	}
}

func (m countdownModel) Init() tea.Cmd {
	return nil
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case countdownMsg:
		m.countdown = entity.Countdown(msg)
		m.steps = m.tracking.DeriveSteps(m.order)
		if m.countdown.Delivered {
			return m, tea.Quit
		}
	case watchErrMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m countdownModel) View() string {
	b := &strings.Builder{}
	writeTracking(b, TrackingView{Order: m.order, Steps: m.steps, Countdown: m.countdown})
	if !m.countdown.Delivered {
		b.WriteString("\nq: выход\n")
	}
	return b.String()
}
