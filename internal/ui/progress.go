package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"lunar/internal/driver"
)

type progressModel struct {
	title   string
	baseDir string
	events  <-chan driver.FileEvent
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	errors  int
	cached  int
	width   int
	done    bool
}

type fileItem struct {
	path   string
	status driver.FileStatus
	diags  int
	cached bool
}

type eventMsg driver.FileEvent
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file parse
// progress. Files appear as the driver queues them; paths are shown
// relative to baseDir when possible.
func NewProgressModel(title, baseDir string, events <-chan driver.FileEvent) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	return &progressModel{
		title:   title,
		baseDir: baseDir,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.FileEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	finished := m.finished()
	header := fmt.Sprintf("%s (%d/%d files", m.title, finished, len(m.items))
	if m.errors > 0 {
		header += fmt.Sprintf(", %d with errors", m.errors)
	}
	if m.cached > 0 {
		header += fmt.Sprintf(", %d cached", m.cached)
	}
	header += ")"
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-12, 20)

	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		line := fmt.Sprintf("  %s %s", status, truncate(item.path, nameWidth))
		if item.diags > 0 {
			line += fmt.Sprintf(" [%d]", item.diags)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.FileEvent) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		idx = len(m.items)
		m.index[ev.Path] = idx
		m.items = append(m.items, fileItem{path: m.display(ev.Path)})
	}
	item := &m.items[idx]
	item.status = ev.Status
	if ev.Status == driver.FileDone || ev.Status == driver.FileFailed {
		item.diags = ev.Diagnostics
		item.cached = ev.Cached
		if ev.HasErrors {
			// файл с ошибками подсвечиваем так же, как ошибку загрузки
			item.status = driver.FileFailed
			m.errors++
		}
		if ev.Cached {
			m.cached++
		}
	}

	total := max(ev.Total, len(m.items))
	return m.prog.SetPercent(float64(m.finished()) / float64(total))
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if item.status == driver.FileDone || item.status == driver.FileFailed {
			n++
		}
	}
	return n
}

func (m *progressModel) display(path string) string {
	if m.baseDir == "" {
		return path
	}
	if rel, err := filepath.Rel(m.baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func styleStatus(status driver.FileStatus) lipgloss.Style {
	switch status {
	case driver.FileDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.FileFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case driver.FileParsing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
