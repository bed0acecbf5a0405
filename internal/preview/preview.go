// Package preview plays the hero typing animation in the terminal.
package preview

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Harikaran1729/portfolio/internal/typewriter"
)

const blinkInterval = 530 * time.Millisecond

var (
	greetingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#111827"))
	typingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563EB"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))
	phaseStyle    = lipgloss.NewStyle().Faint(true)
	frameStyle    = lipgloss.NewStyle().Padding(1, 4).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#93C5FD"))
)

type frameMsg typewriter.Frame

type closedMsg struct{}

type blinkMsg struct{}

// Model renders the latest frame with a cursor that blinks while paused.
type Model struct {
	greeting string
	width    int // widest phrase, reserved so the box does not resize
	frames   <-chan typewriter.Frame
	frame    typewriter.Frame
	cursorOn bool
	quitting bool
}

// New builds a model fed by frames.
func New(greeting string, phrases []string, frames <-chan typewriter.Frame) Model {
	width := 0
	for _, p := range phrases {
		if w := lipgloss.Width(p); w > width {
			width = w
		}
	}
	return Model{greeting: greeting, width: width, frames: frames, cursorOn: true}
}

func waitFrame(frames <-chan typewriter.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return closedMsg{}
		}
		return frameMsg(f)
	}
}

func blink() tea.Cmd {
	return tea.Tick(blinkInterval, func(time.Time) tea.Msg { return blinkMsg{} })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitFrame(m.frames), blink())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = typewriter.Frame(msg)
		if !m.frame.Phase.Paused() {
			m.cursorOn = true
		}
		return m, waitFrame(m.frames)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case blinkMsg:
		if m.frame.Phase.Paused() {
			m.cursorOn = !m.cursorOn
		}
		return m, blink()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	cursor := " "
	if m.cursorOn {
		cursor = cursorStyle.Render("|")
	}
	text := typingStyle.Render(m.frame.Text)
	pad := m.width - lipgloss.Width(m.frame.Text)
	if pad < 0 {
		pad = 0
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		greetingStyle.Render(m.greeting),
		text+cursor+strings.Repeat(" ", pad),
		"",
		phaseStyle.Render(fmt.Sprintf("%s · phrase %d · q to quit", m.frame.Phase, m.frame.Index+1)),
	)
	return frameStyle.Render(body) + "\n"
}

// Options configure Run.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

// Run plays cfg until the user quits or ctx ends, then stops the animator.
func Run(ctx context.Context, greeting string, cfg typewriter.Config, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan typewriter.Frame)
	anim := typewriter.New(cfg, func(f typewriter.Frame) {
		select {
		case frames <- f:
		case <-ctx.Done():
		}
	})

	var progOpts []tea.ProgramOption
	progOpts = append(progOpts, tea.WithContext(ctx))
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	anim.Start(ctx)
	_, err := tea.NewProgram(New(greeting, cfg.Phrases, frames), progOpts...).Run()
	killed := ctx.Err() != nil

	cancel()
	anim.Stop()
	close(frames)
	if err != nil && !killed {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
