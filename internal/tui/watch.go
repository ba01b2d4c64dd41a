// Package tui renders the live watch view over a progress document. It is
// strictly read-only: the view re-scans the document on a timer and never
// writes anything, so it is safe to run alongside an active loop.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nightshift/internal/loop"
	"nightshift/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C"))

	percentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73F59F"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// tickMsg triggers a document re-scan.
type tickMsg time.Time

// WatchModel polls the document on a fixed interval and renders the statuses.
type WatchModel struct {
	docPath  string
	interval time.Duration

	tasks    []progress.Task
	scanErr  error
	locked   bool
	lastScan time.Time

	spinner spinner.Model
	width   int
	height  int
}

// NewWatchModel creates the model and performs the initial scan.
func NewWatchModel(docPath string, interval time.Duration) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	m := WatchModel{
		docPath:  docPath,
		interval: interval,
		spinner:  s,
	}
	return m.rescan()
}

// rescan re-reads the document and the lock state. Scan errors are rendered,
// not fatal: the document may briefly not exist while an editor saves it.
func (m WatchModel) rescan() WatchModel {
	m.tasks, m.scanErr = progress.ScanFile(m.docPath, progress.DefaultStatusLookahead)
	m.locked, _ = loop.NewDocLock(loop.WorkDir(m.docPath)).IsLocked()
	m.lastScan = time.Now()
	return m
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m.rescan(), nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		return m.rescan(), m.tick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nightshift watch · "+m.docPath) + "\n")

	switch {
	case m.scanErr != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("cannot read document: %v", m.scanErr)) + "\n")
	case len(m.tasks) == 0:
		b.WriteString(subtleStyle.Render("no tasks recognized") + "\n")
	default:
		for _, t := range m.tasks {
			b.WriteString(fmt.Sprintf("  %s Step %d: %s\n", t.Status.Glyph(), t.Number, t.Title))
		}
		completed := progress.CountByStatus(m.tasks, progress.StatusCompleted)
		b.WriteString("\n")
		b.WriteString(percentStyle.Render(fmt.Sprintf("%d/%d completed (%.0f%%)",
			completed, len(m.tasks), progress.CompletionPercent(m.tasks))))
		b.WriteString("\n")
	}

	if m.locked {
		b.WriteString(m.spinner.View() + subtleStyle.Render(" loop running") + "\n")
	}
	b.WriteString(subtleStyle.Render(fmt.Sprintf("last scan %s · q quit · r refresh",
		m.lastScan.Format("15:04:05"))))
	return b.String()
}

// Watch runs the view until the user quits.
func Watch(docPath string, interval time.Duration) error {
	p := tea.NewProgram(NewWatchModel(docPath, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
