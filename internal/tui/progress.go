// Package tui provides a live progress display for a running firmware build:
// a spinner, the elapsed time, and a rolling tail of build output.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kbforge/kbforge/firmware"
)

const tailLines = 6

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	tailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

type lineMsg string

type doneMsg struct {
	res *firmware.Result
}

type model struct {
	label   string
	spinner spinner.Model
	started time.Time
	tail    []string
	res     *firmware.Result
}

func newModel(label string) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	return model{label: label, spinner: sp, started: time.Now()}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lineMsg:
		m.tail = append(m.tail, string(msg))
		if len(m.tail) > tailLines {
			m.tail = m.tail[len(m.tail)-tailLines:]
		}
		return m, nil
	case doneMsg:
		m.res = msg.res
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		// The build keeps running; there is nothing safe to cancel here.
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	if m.res != nil {
		return ""
	}
	var sb strings.Builder
	elapsed := time.Since(m.started).Round(time.Second)
	sb.WriteString(fmt.Sprintf("%s %s %s\n",
		m.spinner.View(), labelStyle.Render("Building "+m.label), elapsed))
	for _, line := range m.tail {
		sb.WriteString(tailStyle.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Run executes build while displaying live progress, and returns its result.
// build receives an onLine callback to feed output lines into the display.
func Run(ctx context.Context, label string, build func(onLine func(string)) *firmware.Result) (*firmware.Result, error) {
	program := tea.NewProgram(newModel(label), tea.WithContext(ctx))

	resCh := make(chan *firmware.Result, 1)
	go func() {
		res := build(func(line string) {
			program.Send(lineMsg(line))
		})
		resCh <- res
		program.Send(doneMsg{res: res})
	}()

	if _, err := program.Run(); err != nil {
		// The display failed; the build itself still finishes.
		return <-resCh, err
	}
	return <-resCh, nil
}
