package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/service"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// sweepProgressMsg carries pair counts from the running sweep.
type sweepProgressMsg struct {
	done  int
	total int
}

// sweepDoneMsg carries the finished report.
type sweepDoneMsg struct {
	report *service.Report
	err    error
}

// sweepModel is the bubbletea model for a duplicate-detection sweep.
type sweepModel struct {
	progressCh <-chan sweepProgressMsg
	resultCh   <-chan sweepDoneMsg
	cancel     func()
	progress   progress.Model
	theme      Theme
	done       int
	total      int
	finished   bool
	quitting   bool
	report     *service.Report
	err        error
}

func newSweepModel(progressCh <-chan sweepProgressMsg, resultCh <-chan sweepDoneMsg, cancel func()) sweepModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return sweepModel{
		progressCh: progressCh,
		resultCh:   resultCh,
		cancel:     cancel,
		progress:   prog,
		theme:      defaultTheme,
	}
}

// Init starts listening for sweep events.
func (m sweepModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForEvent(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m sweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			// Wait for the sweep goroutine to observe the cancellation
			return m, m.waitForEvent()
		}

	case sweepProgressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, m.waitForEvent()

	case sweepDoneMsg:
		m.finished = true
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		// Update progress bar animation
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m sweepModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m sweepModel) renderContent() string {
	if m.finished {
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Sweep failed: %s\n", m.err))
		}
		return m.theme.completedStyle().Render("✓ Sweep complete") + "\n"
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render("[scoring]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d pairs", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to abort")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// waitForEvent blocks on the next sweep event in a command goroutine so
// Update() never blocks.
func (m sweepModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-m.progressCh:
			return p
		case d := <-m.resultCh:
			return d
		}
	}
}

// RunSweepProgress runs fn with an interactive progress bar. fn receives a
// progress callback safe to call from the sweep goroutine.
func RunSweepProgress(cancel func(), fn func(onProgress func(done, total int)) (*service.Report, error)) (*service.Report, error) {
	progressCh := make(chan sweepProgressMsg, 16)
	resultCh := make(chan sweepDoneMsg, 1)

	go func() {
		report, err := fn(func(done, total int) {
			// Drop updates rather than stall the sweep
			select {
			case progressCh <- sweepProgressMsg{done: done, total: total}:
			default:
			}
		})
		resultCh <- sweepDoneMsg{report: report, err: err}
	}()

	p := tea.NewProgram(newSweepModel(progressCh, resultCh, cancel))
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(sweepModel); ok {
		if m.err != nil {
			return nil, m.err
		}
		return m.report, nil
	}
	return nil, nil
}
