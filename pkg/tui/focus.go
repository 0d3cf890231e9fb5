// Package tui is the terminal view of the focus timer.
//
// The model runs inside the bubbletea event loop. Timer notifications arrive
// from the ticker goroutine and are forwarded through a channel, so the model
// itself is only touched by Update. The completed-session count is the
// exception: it is kept atomically at the subscriber.
package tui

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/gradary/pkg/dashboard"
	"github.com/harrisonrobin/gradary/pkg/focus"
	"github.com/harrisonrobin/gradary/pkg/urgency"
)

// Modes are the preset lengths bound to the number keys.
var Modes = []struct {
	Key     string
	Label   string
	Minutes int
}{
	{"1", "Focus", 25},
	{"2", "Short break", 5},
	{"3", "Long break", 15},
}

// StatusMsg carries a timer notification into the event loop.
type StatusMsg focus.Status

var (
	clockStyle    = lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder())
	runningStyle  = clockStyle.BorderForeground(lipgloss.Color("42"))
	pausedStyle   = clockStyle.BorderForeground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
	doneStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	priorityStyle = lipgloss.NewStyle().Underline(true)
)

// TierStyle colors an urgency tier for the terminal.
func TierStyle(t urgency.Tier) lipgloss.Style {
	switch t {
	case urgency.Overdue, urgency.High:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	case urgency.Medium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	case urgency.Low:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	}
	return lipgloss.NewStyle()
}

// FocusModel is the bubbletea model over a focus.Timer.
type FocusModel struct {
	timer     *focus.Timer
	updates   chan focus.Status
	status    focus.Status
	priority  []dashboard.PriorityItem
	completed atomic.Int64
	quitting  bool
}

// NewFocusModel subscribes to timer. priority is shown under the clock.
func NewFocusModel(timer *focus.Timer, priority []dashboard.PriorityItem) *FocusModel {
	m := &FocusModel{
		timer:    timer,
		updates:  make(chan focus.Status, 64),
		status:   timer.Status(),
		priority: priority,
	}
	timer.Subscribe(func(st focus.Status) {
		// Counted here so a full display buffer cannot lose a session.
		if st.Event == focus.EventComplete {
			m.completed.Add(1)
		}
		select {
		case m.updates <- st:
		default:
			// Display is behind; it reads the latest status on the next message anyway.
		}
	})
	return m
}

func (m *FocusModel) waitForStatus() tea.Msg {
	return StatusMsg(<-m.updates)
}

func (m *FocusModel) Init() tea.Cmd {
	return tea.Batch(m.waitForStatus, tea.SetWindowTitle(m.status.Title))
}

func (m *FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case StatusMsg:
		st := focus.Status(msg)
		m.status = st
		return m, tea.Batch(m.waitForStatus, tea.SetWindowTitle(st.Title))
	}
	return m, nil
}

func (m *FocusModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		m.timer.Reset()
		m.quitting = true
		return tea.Quit
	case " ", "enter":
		m.timer.Start()
	case "r":
		m.timer.Reset()
	default:
		for _, mode := range Modes {
			if mode.Key == key {
				if err := m.timer.SelectMode(mode.Minutes); err != nil {
					log.Printf("Warning: could not select %s: %v", mode.Label, err)
				}
			}
		}
	}
	m.status = m.timer.Status()
	return nil
}

func (m *FocusModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.modeLine())
	b.WriteString("\n\n")

	style := clockStyle
	switch m.status.State {
	case focus.Running:
		style = runningStyle
	case focus.Paused:
		style = pausedStyle
	}
	b.WriteString(style.Render(m.status.Clock))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", m.status.State)

	if n := m.completed.Load(); n > 0 {
		b.WriteString(doneStyle.Render(fmt.Sprintf("Sessions completed: %d", n)))
		b.WriteString("\n")
	}

	if len(m.priority) > 0 {
		b.WriteString("\n")
		b.WriteString(priorityStyle.Render("Up next"))
		b.WriteString("\n")
		for _, item := range m.priority {
			fmt.Fprintf(&b, "  %s %s (%s)\n", TierStyle(item.Urgency).Render("●"), item.Task.Title, item.Task.Subject)
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space start/pause • r reset • 1/2/3 focus/short/long • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *FocusModel) modeLine() string {
	parts := make([]string, 0, len(Modes))
	for _, mode := range Modes {
		label := fmt.Sprintf("[%s] %s %dm", mode.Key, mode.Label, mode.Minutes)
		if mode.Minutes == m.status.Minutes {
			label = lipgloss.NewStyle().Bold(true).Render(label)
		} else {
			label = helpStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}
