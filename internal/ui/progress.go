package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lumipallolabs/rex/internal/core"
	"github.com/lumipallolabs/rex/internal/logging"
	"github.com/lumipallolabs/rex/internal/scanner"
)

// ErrQuit is returned when the progress view is closed before the run ends
var ErrQuit = errors.New("interrupted")

const recentLimit = 5

// runEventMsg wraps a controller event for continued listening
type runEventMsg struct {
	event core.Event
}

// ProgressApp is the Bubble Tea model shown with --progress
type ProgressApp struct {
	ctrl   *core.Controller
	events <-chan core.Event
	state  func() core.RunState

	spinner spinner.Model
	bar     progress.Model
	keys    KeyMap

	target     string
	sessionDir string
	phase      core.Phase
	progress   scanner.Progress
	recent     []scanner.CarveResult
	failed     int
	showRecent bool

	done    bool
	summary core.Summary
	err     error
	width   int
}

// NewProgressApp creates the view for ctrl. The run starts in Init.
func NewProgressApp(ctrl *core.Controller) ProgressApp {
	state := func() core.RunState { return core.RunState{} }
	if ctrl != nil {
		state = ctrl.State
	}
	return ProgressApp{
		ctrl:  ctrl,
		state: state,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(SpinnerStyle),
		),
		bar:        progress.New(progress.WithDefaultGradient()),
		keys:       DefaultKeyMap(),
		showRecent: true,
	}
}

// Init implements tea.Model
func (a ProgressApp) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, startRun(a.ctrl))
}

type runStartedMsg struct {
	events <-chan core.Event
}

func startRun(ctrl *core.Controller) tea.Cmd {
	return func() tea.Msg {
		return runStartedMsg{events: ctrl.Start()}
	}
}

// Update implements tea.Model
func (a ProgressApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.bar.Width = max(10, min(msg.Width-4, 80))
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Recent):
			a.showRecent = !a.showRecent
		}
		return a, nil

	case runStartedMsg:
		a.events = msg.events
		return a, a.listenForRunEvents()

	case runEventMsg:
		a = a.handleRunEvent(msg.event)
		if a.done {
			return a, tea.Quit
		}
		return a, a.listenForRunEvents()

	case spinner.TickMsg:
		if a.done {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleRunEvent folds one event into the view state
func (a ProgressApp) handleRunEvent(event core.Event) ProgressApp {
	switch e := event.(type) {
	case core.RunStartedEvent:
		a.target = e.Target
		a.sessionDir = e.SessionDir
		a.progress.Size = e.Size
	case core.PhaseChangedEvent:
		logging.Debug.Printf("[TUI] phase changed to: %s", e.Phase)
		a.phase = e.Phase
	case core.ProgressEvent:
		a.progress = e.Progress
	case core.CarvedEvent:
		a.progress.Carved++
		a.recent = append(a.recent, e.Result)
		if len(a.recent) > recentLimit {
			a.recent = a.recent[len(a.recent)-recentLimit:]
		}
	case core.CarveFailedEvent:
		a.failed++
	case core.RunCompletedEvent:
		a.done = true
		a.summary = e.Summary
		a.err = e.Err
	}
	return a
}

// listenForRunEvents creates a command that waits for the next event
func (a ProgressApp) listenForRunEvents() tea.Cmd {
	if a.events == nil {
		return nil
	}
	eventCh := a.events
	return func() tea.Msg {
		event, ok := <-eventCh
		if !ok {
			return nil
		}
		return runEventMsg{event: event}
	}
}

// View implements tea.Model
func (a ProgressApp) View() string {
	var b strings.Builder

	status := a.phase.String()
	if status == "" {
		status = "Opening"
	}
	if a.done {
		fmt.Fprintf(&b, "%s %s\n", SuccessStyle.Render("✓"), TitleStyle.Render(status))
	} else {
		fmt.Fprintf(&b, "%s %s %s\n", a.spinner.View(), TitleStyle.Render(status), PathStyle.Render(a.target))
	}
	if a.sessionDir != "" {
		fmt.Fprintf(&b, "%s %s\n", HelpStyle.Render("into"), PathStyle.Render(a.sessionDir))
	}
	b.WriteString("\n")

	b.WriteString(a.bar.ViewAs(a.progress.Percent()))
	b.WriteString("\n")
	stats := fmt.Sprintf("%s / %s  %d carved", FormatSize(a.progress.Offset), FormatSize(a.progress.Size), a.progress.Carved)
	if a.failed > 0 {
		stats += "  " + WarningStyle.Render(fmt.Sprintf("%d failed", a.failed))
	}
	if st := a.state(); st.IsRunning() {
		stats += "  " + FormatElapsed(st.Elapsed())
	}
	b.WriteString(StatsStyle.Render(stats))
	b.WriteString("\n")

	if a.showRecent && len(a.recent) > 0 {
		lines := make([]string, 0, len(a.recent))
		for _, r := range a.recent {
			lines = append(lines, CarvedLine(r))
		}
		b.WriteString(PanelStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if a.err != nil {
		b.WriteString(ErrorStyle.Render("error: " + a.err.Error()))
		b.WriteString("\n")
	}

	var help []string
	for _, k := range a.keys.ShortHelp() {
		h := k.Help()
		help = append(help, HelpKey.Render(h.Key)+" "+HelpStyle.Render(h.Desc))
	}
	b.WriteString(strings.Join(help, "  "))
	b.WriteString("\n")
	return b.String()
}

// RunProgress runs ctrl under the progress view. Warnings are held back
// while the view owns the terminal and written to stderr afterwards.
func RunProgress(ctrl *core.Controller) (core.Summary, error) {
	var warnings bytes.Buffer
	logging.SetWarnOutput(&warnings)
	defer func() {
		logging.SetWarnOutput(os.Stderr)
		io.Copy(os.Stderr, &warnings)
	}()

	final, err := tea.NewProgram(NewProgressApp(ctrl)).Run()
	if err != nil {
		return core.Summary{}, err
	}
	app := final.(ProgressApp)
	if !app.done {
		return core.Summary{}, ErrQuit
	}
	return app.summary, app.err
}
