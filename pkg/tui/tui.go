// Package tui provides a terminal user interface for smfcheck
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/smfcheck/pkg/batch"
	"github.com/james-see/smfcheck/pkg/discover"
	"github.com/james-see/smfcheck/pkg/export"
	"github.com/james-see/smfcheck/pkg/hexview"
	"github.com/james-see/smfcheck/pkg/listing"
	"github.com/james-see/smfcheck/pkg/validator"
)

// Oscilloscope-inspired color scheme
var (
	scopeGreen = lipgloss.Color("#39FF14")
	amber      = lipgloss.Color("#FFB000")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(scopeGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(scopeGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(scopeGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(scopeGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateValidating
	StateResults
	StateDetail
	StateHex
	StateEvents
)

type action int

const (
	actionFile action = iota
	actionFolder
	actionFolderRecursive
	actionPairNotes
	actionStrict
	actionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	action      action
}

var menuItems = []MenuItem{
	{Title: "Validate file", Description: "Check a single .mid/.midi file", action: actionFile},
	{Title: "Validate folder", Description: "Check every MIDI file in a folder", action: actionFolder},
	{Title: "Validate folder (recursive)", Description: "Check every MIDI file below a folder", action: actionFolderRecursive},
	{Title: "Pair notes", Description: "Count notes left sounding at the end of each track", action: actionPairNotes},
	{Title: "Strict", Description: "Warn on tempos outside 10000..2000000 us/quarter", action: actionStrict},
	{Title: "Exit", Description: "Exit the application", action: actionExit},
}

const hexRows = 16

// Model represents the TUI model
type Model struct {
	state      State
	menuIndex  int
	filePicker filepicker.Model
	spinner    spinner.Model
	results    table.Model
	viewport   viewport.Model

	opts      validator.Options
	selection action
	target    string
	outcome   []batch.Result

	hexData []byte
	hexFrom int
	status  string
	err     error
	width   int
	height  int
}

// validationDoneMsg signals batch completion
type validationDoneMsg struct {
	results []batch.Result
	err     error
}

// openDoneMsg reports the result of launching the default application
type openDoneMsg struct {
	path string
	err  error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(scopeGreen)

	t := table.New(
		table.WithColumns(resultColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		results:    t,
		viewport:   viewport.New(80, 20),
	}
}

func resultColumns(width int) []table.Column {
	file := width - 60
	if file < 20 {
		file = 20
	}
	return []table.Column{
		{Title: "Status", Width: 6},
		{Title: "File", Width: file},
		{Title: "Fmt", Width: 3},
		{Title: "Tracks", Width: 6},
		{Title: "Division", Width: 22},
		{Title: "Errors", Width: 6},
		{Title: "Warnings", Width: 8},
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages, including its own reads
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.target = path
			m.state = StateValidating
			return m, tea.Batch(m.spinner.Tick, m.performValidation())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		m.results.SetColumns(resultColumns(msg.Width - 8))
		m.results.SetHeight(max(msg.Height-16, 5))
		m.viewport.Width = max(msg.Width-8, 20)
		m.viewport.Height = max(msg.Height-14, 5)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResults:
			return m.updateResults(msg)
		case StateDetail, StateEvents:
			return m.updateViewport(msg)
		case StateHex:
			return m.updateHex(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case validationDoneMsg:
		m.state = StateResults
		m.outcome = msg.results
		m.err = msg.err
		m.status = ""
		m.results.SetRows(resultRows(msg.results))
		m.results.SetCursor(0)
		return m, nil

	case openDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("could not open %s: %v", filepath.Base(msg.path), msg.err)
		} else {
			m.status = "opened " + filepath.Base(msg.path)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		item := menuItems[m.menuIndex]
		switch item.action {
		case actionExit:
			return m, tea.Quit
		case actionPairNotes:
			m.opts.PairNotes = !m.opts.PairNotes
			return m, nil
		case actionStrict:
			m.opts.Strict = !m.opts.Strict
			return m, nil
		}

		m.selection = item.action
		m.state = StateFilePicker
		if item.action == actionFile {
			m.filePicker.AllowedTypes = []string{".mid", ".midi"}
			m.filePicker.FileAllowed = true
			m.filePicker.DirAllowed = false
		} else {
			m.filePicker.AllowedTypes = nil
			m.filePicker.FileAllowed = false
			m.filePicker.DirAllowed = true
		}
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = StateMenu
		m.outcome = nil
		m.err = nil
		m.status = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	r, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "enter", "d":
		m.state = StateDetail
		m.viewport.SetContent(detail(r))
		m.viewport.GotoTop()
		return m, nil
	case "x":
		if r.Report == nil {
			return m, nil
		}
		data, err := os.ReadFile(r.Path)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.hexData = data
		m.hexFrom = hexview.Window(r.Report.FirstOffset(), hexRows).From
		m.state = StateHex
		return m, nil
	case "e":
		content, err := events(r.Path)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.state = StateEvents
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
		return m, nil
	case "o":
		return m, openFile(r.Path)
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m Model) updateViewport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.state = StateResults
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateHex(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := max(len(m.hexData)-1, 0)
	last -= last % hexview.BytesPerRow
	switch msg.String() {
	case "esc", "enter":
		m.state = StateResults
		m.hexData = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.hexFrom = max(m.hexFrom-hexview.BytesPerRow, 0)
	case "down", "j":
		m.hexFrom = min(m.hexFrom+hexview.BytesPerRow, last)
	case "pgup", "b":
		m.hexFrom = max(m.hexFrom-hexRows*hexview.BytesPerRow, 0)
	case "pgdown", "f", " ":
		m.hexFrom = min(m.hexFrom+hexRows*hexview.BytesPerRow, last)
	case "home", "g":
		m.hexFrom = 0
	}
	return m, nil
}

func (m Model) selected() (batch.Result, bool) {
	i := m.results.Cursor()
	if i < 0 || i >= len(m.outcome) {
		return batch.Result{}, false
	}
	return m.outcome[i], true
}

func (m Model) performValidation() tea.Cmd {
	target := m.target
	recursive := m.selection == actionFolderRecursive
	opts := batch.Options{
		Validator: m.opts,
		// Logging to stderr would corrupt the alternate screen
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return func() tea.Msg {
		paths, err := discover.FindMIDIFiles([]string{target}, recursive)
		if err != nil {
			return validationDoneMsg{err: err}
		}
		if len(paths) == 0 {
			return validationDoneMsg{err: fmt.Errorf("no MIDI files found in %s", target)}
		}
		results, err := batch.Run(context.Background(), paths, opts)
		return validationDoneMsg{results: results, err: err}
	}
}

func resultRows(results []batch.Result) []table.Row {
	rows := make([]table.Row, 0, len(results))
	for _, r := range results {
		if r.Report == nil {
			rows = append(rows, table.Row{"READ", r.Path, "", "", "", "1", "0"})
			continue
		}
		cells := export.Row(r.Report)
		// Status, File, Fmt, Tracks, Division, Errors, Warnings
		rows = append(rows, table.Row{cells[0], cells[1], cells[2], cells[3], cells[4], cells[6], cells[7]})
	}
	return rows
}

func detail(r batch.Result) string {
	if r.Report == nil {
		return fmt.Sprintf("File: %s\n\nERRORS:\n  - %v\n", r.Path, r.Err)
	}
	return export.Text(r.Report)
}

func events(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	l, err := listing.List(data)
	if err != nil {
		return "", err
	}
	return l.String(), nil
}

func openCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

func openFile(path string) tea.Cmd {
	return func() tea.Msg {
		cmd := openCommand(path)
		if err := cmd.Start(); err != nil {
			return openDoneMsg{path: path, err: err}
		}
		go func() { _ = cmd.Wait() }()
		return openDoneMsg{path: path}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	help := "↑/↓: navigate • enter: select • q: quit"
	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateValidating:
		s.WriteString(m.viewValidating())
	case StateResults:
		s.WriteString(m.viewResults())
		help = "↑/↓: navigate • enter: details • x: hex • e: events • o: open • esc: menu • q: quit"
	case StateDetail, StateEvents:
		s.WriteString(m.viewport.View())
		help = "↑/↓: scroll • esc: back • q: quit"
	case StateHex:
		s.WriteString(m.viewHex())
		help = "↑/↓: row • pgup/pgdown: page • g: top • esc: back • q: quit"
	}

	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(help))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SMF CHECK "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		title := item.Title
		switch item.action {
		case actionPairNotes:
			title += ": " + onOff(m.opts.PairNotes)
		case actionStrict:
			title += ": " + onOff(m.opts.Strict)
		}
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(amber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	what := "MIDI FILE"
	if m.selection != actionFile {
		what = "FOLDER"
	}
	s.WriteString(titleStyle.Render(fmt.Sprintf(" SELECT %s ", what)))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewValidating() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" VALIDATING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Validating %s...\n", m.spinner.View(), filepath.Base(m.target)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  pair notes: %s • strict: %s", onOff(m.opts.PairNotes), onOff(m.opts.Strict))))

	return boxStyle.Render(s.String())
}

func (m Model) viewResults() string {
	var s strings.Builder

	if len(m.outcome) == 0 {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		if m.err != nil {
			s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", m.err.Error())))
		} else {
			s.WriteString(errorStyle.Render("✗ Nothing was validated"))
		}
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("Press esc to continue"))
		return boxStyle.Render(s.String())
	}

	passed, failed := batch.Summary(m.outcome)
	s.WriteString(titleStyle.Render(" RESULTS "))
	s.WriteString("\n\n")
	s.WriteString(m.results.View())
	s.WriteString("\n\n")
	summary := fmt.Sprintf("%d file(s): %d OK, %d failed", len(m.outcome), passed, failed)
	if failed == 0 {
		s.WriteString(successStyle.Render("✓ " + summary))
	} else {
		s.WriteString(errorStyle.Render("✗ " + summary))
	}

	return s.String()
}

func (m Model) viewHex() string {
	r, _ := m.selected()
	var marks hexview.Marks
	if r.Report != nil {
		marks = hexview.MarksFromReport(r.Report)
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", filepath.Base(r.Path))))
	s.WriteString("\n")
	s.WriteString(hexview.Render(m.hexData, marks, hexview.Options{From: m.hexFrom, Rows: hexRows}))
	s.WriteString(statusStyle.Render(fmt.Sprintf("%d of %d bytes",
		min(m.hexFrom+hexRows*hexview.BytesPerRow, len(m.hexData)), len(m.hexData))))
	return s.String()
}

func asciiLogo() string {
	logo := `
   ____  __  __ _____    ____ _   _ _____ ____ _  __
  / ___||  \/  |  ___|  / ___| | | | ____/ ___| |/ /
  \___ \| |\/| | |_    | |   | |_| |  _|| |   | ' /
   ___) | |  | |  _|   | |___|  _  | |__| |___| . \
  |____/|_|  |_|_|      \____|_| |_|_____\____|_|\_\
`
	return lipgloss.NewStyle().Foreground(scopeGreen).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
