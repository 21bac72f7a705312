// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is the terminal front end: a form for the run parameters and
// a live log view while the pipeline executes. It follows The Elm
// Architecture as bubbletea frames it: model, update, view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtexier/evalmailer/internal/pipeline"
	"github.com/jtexier/evalmailer/pkg/types"
)

// appState is which screen the app shows.
type appState int

const (
	stateForm appState = iota
	stateRunning
	stateDone
)

// Field indexes into App.inputs.
const (
	fieldClass = iota
	fieldYear
	fieldInputPDF
	fieldRosters
	fieldOutDir
	numFields
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	focusedLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6BCB77"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	logBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1)
)

var fieldLabels = [numFields]string{
	"Classe",
	"Année scolaire",
	"PDF d'entrée",
	"Exports élèves (séparés par ;)",
	"Dossier de sortie",
}

// logMsg carries one pipeline log line into the update loop.
type logMsg string

// doneMsg ends the running state.
type doneMsg struct {
	sum pipeline.Summary
	err error
}

// Runner executes the pipeline; injectable for tests.
type Runner func(ctx context.Context, opts pipeline.Options, w *ChanWriter) (pipeline.Summary, error)

// App is the bubbletea model.
type App struct {
	state  appState
	cfg    types.PipelineConfig
	runner Runner

	inputs  [numFields]textinput.Model
	focused int
	formErr string

	spin    spinner.Model
	logView viewport.Model
	lines   []string
	logCh   chan string
	doneCh  chan doneMsg

	sum    pipeline.Summary
	runErr error

	width  int
	height int
}

// NewApp builds the form pre-filled from the configuration.
func NewApp(cfg types.PipelineConfig, year string) *App {
	a := &App{
		cfg:    cfg,
		runner: defaultRunner,
		spin:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for i := 0; i < numFields; i++ {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 512
		a.inputs[i] = in
	}
	a.inputs[fieldYear].SetValue(year)
	a.inputs[fieldOutDir].SetValue(cfg.Split.OutputDir)
	a.inputs[fieldClass].Focus()
	return a
}

func defaultRunner(ctx context.Context, opts pipeline.Options, w *ChanWriter) (pipeline.Summary, error) {
	return pipeline.Run(ctx, opts, w)
}

// ChanWriter is an io.Writer that forwards whole lines to a channel, so
// pipeline output can flow into the update loop as messages.
type ChanWriter struct {
	ch  chan string
	buf strings.Builder
}

func (w *ChanWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			w.ch <- w.buf.String()
			w.buf.Reset()
			continue
		}
		w.buf.WriteByte(b)
	}
	return len(p), nil
}

// Flush sends any unterminated trailing line.
func (w *ChanWriter) Flush() {
	if w.buf.Len() > 0 {
		w.ch <- w.buf.String()
		w.buf.Reset()
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles one message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.logView = viewport.New(max(40, msg.Width-6), max(8, msg.Height-8))
		a.refreshLog()
		return a, nil

	case logMsg:
		a.lines = append(a.lines, string(msg))
		a.refreshLog()
		return a, a.waitForEvent()

	case doneMsg:
		a.state = stateDone
		a.sum = msg.sum
		a.runErr = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.state != stateRunning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q", "esc":
			if a.state != stateRunning {
				return a, tea.Quit
			}
		case "tab", "down":
			if a.state == stateForm {
				a.moveFocus(1)
				return a, nil
			}
		case "shift+tab", "up":
			if a.state == stateForm {
				a.moveFocus(-1)
				return a, nil
			}
		case "enter":
			if a.state == stateForm {
				if a.focused < numFields-1 {
					a.moveFocus(1)
					return a, nil
				}
				return a.startRun()
			}
		}
	}

	if a.state == stateForm {
		var cmd tea.Cmd
		a.inputs[a.focused], cmd = a.inputs[a.focused].Update(msg)
		return a, cmd
	}
	if a.state == stateRunning {
		var cmd tea.Cmd
		a.logView, cmd = a.logView.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) moveFocus(delta int) {
	a.inputs[a.focused].Blur()
	a.focused = (a.focused + delta + numFields) % numFields
	a.inputs[a.focused].Focus()
}

// options assembles pipeline options from the form fields.
func (a *App) options() (pipeline.Options, error) {
	class := strings.TrimSpace(a.inputs[fieldClass].Value())
	year := strings.TrimSpace(a.inputs[fieldYear].Value())
	input := strings.TrimSpace(a.inputs[fieldInputPDF].Value())
	if class == "" || year == "" {
		return pipeline.Options{}, fmt.Errorf("classe et année sont obligatoires")
	}
	if input == "" {
		return pipeline.Options{}, fmt.Errorf("PDF d'entrée obligatoire")
	}
	var rosters []string
	for _, p := range strings.Split(a.inputs[fieldRosters].Value(), ";") {
		if p = strings.TrimSpace(p); p != "" {
			rosters = append(rosters, p)
		}
	}
	if len(rosters) == 0 {
		return pipeline.Options{}, fmt.Errorf("au moins un export élèves est requis")
	}

	cfg := a.cfg
	if out := strings.TrimSpace(a.inputs[fieldOutDir].Value()); out != "" {
		cfg.Split.OutputDir = out
	}
	return pipeline.Options{
		Class:       class,
		Year:        year,
		InputPDF:    input,
		RosterPaths: rosters,
		Config:      cfg,
	}, nil
}

func (a *App) startRun() (tea.Model, tea.Cmd) {
	opts, err := a.options()
	if err != nil {
		a.formErr = err.Error()
		return a, nil
	}
	a.formErr = ""
	a.state = stateRunning
	a.lines = nil
	a.logCh = make(chan string, 64)
	a.doneCh = make(chan doneMsg, 1)
	if a.logView.Width == 0 {
		a.logView = viewport.New(max(40, a.width-6), max(8, a.height-8))
	}

	runner := a.runner
	logCh, doneCh := a.logCh, a.doneCh
	go func() {
		w := &ChanWriter{ch: logCh}
		sum, err := runner(context.Background(), opts, w)
		w.Flush()
		doneCh <- doneMsg{sum: sum, err: err}
	}()

	return a, tea.Batch(a.spin.Tick, a.waitForEvent())
}

// waitForEvent blocks on the next log line or completion.
func (a *App) waitForEvent() tea.Cmd {
	logCh, doneCh := a.logCh, a.doneCh
	return func() tea.Msg {
		select {
		case line := <-logCh:
			return logMsg(line)
		case done := <-doneCh:
			// Drain the log so the final lines are not lost.
			for {
				select {
				case line := <-logCh:
					return logMsg(line)
				default:
					return done
				}
			}
		}
	}
}

func (a *App) refreshLog() {
	if a.logView.Width == 0 {
		return
	}
	a.logView.SetContent(strings.Join(a.lines, "\n"))
	a.logView.GotoBottom()
}

// View renders the current screen.
func (a *App) View() string {
	switch a.state {
	case stateForm:
		return a.viewForm()
	case stateRunning:
		return a.viewRunning()
	default:
		return a.viewDone()
	}
}

func (a *App) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Évaluations nationales — envoi aux familles"))
	b.WriteString("\n")
	for i := 0; i < numFields; i++ {
		label := labelStyle
		if i == a.focused {
			label = focusedLabel
		}
		b.WriteString(label.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(a.inputs[i].View())
		b.WriteString("\n")
	}
	if a.formErr != "" {
		b.WriteString(errStyle.Render("✗ " + a.formErr))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("Tab → champ suivant    Entrée (dernier champ) → lancer    Esc → quitter"))
	return b.String()
}

func (a *App) viewRunning() string {
	head := fmt.Sprintf("%s Traitement en cours — %s",
		a.spin.View(), a.inputs[fieldClass].Value())
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(head),
		logBox.Render(a.logView.View()),
		hintStyle.Render("↑/↓ → faire défiler le journal"),
	)
}

func (a *App) viewDone() string {
	var status string
	if a.runErr != nil {
		status = errStyle.Render(fmt.Sprintf("✗ Échec : %v", a.runErr))
	} else {
		status = okStyle.Render(fmt.Sprintf(
			"✓ Terminé : %d PDF découpés, %d familles appariées, %d manquantes",
			a.sum.Split, a.sum.Matched, a.sum.Missing))
	}
	tail := a.lines
	if len(tail) > 12 {
		tail = tail[len(tail)-12:]
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Évaluations nationales"),
		status,
		logBox.Render(strings.Join(tail, "\n")),
		hintStyle.Render("q → quitter"),
	)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
