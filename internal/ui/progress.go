package ui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"csls/internal/project"
)

// sceneSteps is how many steps a scene passes through: read, scan, check.
const sceneSteps = 3

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cleanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// sceneRow is one scene on the board.
type sceneRow struct {
	path     string
	scene    string
	stage    project.Stage
	status   project.Status
	errors   int
	warnings int
	// listed is false for scenes missing from the *scene_list once it is
	// known.
	listed bool
}

func (r sceneRow) unreadable() bool {
	return r.stage == project.StageRead && r.status == project.StatusError
}

func (r sceneRow) checked() bool {
	return r.stage == project.StageValidate &&
		(r.status == project.StatusDone || r.status == project.StatusError)
}

func (r sceneRow) steps() int {
	switch {
	case r.unreadable(), r.checked():
		return sceneSteps
	case r.stage == project.StageValidate:
		return 2
	case r.stage == project.StageIndex:
		return 1
	}
	return 0
}

func (r sceneRow) state() string {
	switch {
	case r.unreadable():
		return "unreadable"
	case r.checked() && r.errors > 0:
		return "errors"
	case r.checked() && r.warnings > 0:
		return "warnings"
	case r.checked():
		return "clean"
	case r.stage == project.StageValidate:
		return "checking"
	case r.stage == project.StageIndex:
		return "scanning"
	case r.stage == project.StageRead && r.status == project.StatusWorking:
		return "reading"
	}
	return "queued"
}

type sceneBoard struct {
	title    string
	events   <-chan project.Event
	spin     spinner.Model
	bar      progress.Model
	rows     []sceneRow
	byPath   map[string]int
	width    int
	finished bool
}

type projectEvent project.Event
type eventsClosed struct{}

// NewProgressModel returns a Bubble Tea model showing each scene of a
// check as it is read, scanned and validated, with its error and warning
// counts. Rows follow the startup *scene_list once it has been indexed.
// The model quits when events is closed.
func NewProgressModel(title string, scenes []string, events <-chan project.Event) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = busyStyle

	bar := progress.New(progress.WithSolidFill("6"), progress.WithoutPercentage())
	bar.Width = 60

	m := &sceneBoard{
		title:  title,
		events: events,
		spin:   spin,
		bar:    bar,
		byPath: make(map[string]int, len(scenes)),
		width:  80,
	}
	for _, path := range scenes {
		m.rows = append(m.rows, sceneRow{path: path, scene: sceneName(path), listed: true})
	}
	sort.SliceStable(m.rows, func(i, j int) bool { return m.rows[i].scene < m.rows[j].scene })
	m.reindex()
	return m
}

func (m *sceneBoard) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *sceneBoard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectEvent:
		return m, tea.Batch(m.apply(project.Event(msg)), m.next())
	case eventsClosed:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = min(60, max(10, msg.Width-4))
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *sceneBoard) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosed{}
		}
		return projectEvent(ev)
	}
}

func (m *sceneBoard) apply(ev project.Event) tea.Cmd {
	if ev.File == "" {
		if len(ev.SceneList) > 0 {
			m.order(ev.SceneList)
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.stage, row.status = ev.Stage, ev.Status
	if row.checked() {
		row.errors, row.warnings = ev.Errors, ev.Warnings
	}
	return m.bar.SetPercent(m.fraction())
}

// order sorts rows by their *scene_list position. Scenes missing from the
// list follow in name order and are marked as unlisted.
func (m *sceneBoard) order(list []string) {
	pos := make(map[string]int, len(list))
	for i, name := range list {
		key := strings.ToLower(name)
		if _, seen := pos[key]; !seen {
			pos[key] = i
		}
	}
	rank := func(r sceneRow) int {
		if p, ok := pos[strings.ToLower(r.scene)]; ok {
			return p
		}
		return len(list)
	}
	for i := range m.rows {
		m.rows[i].listed = rank(m.rows[i]) < len(list)
	}
	sort.SliceStable(m.rows, func(i, j int) bool {
		ri, rj := rank(m.rows[i]), rank(m.rows[j])
		if ri != rj {
			return ri < rj
		}
		return m.rows[i].scene < m.rows[j].scene
	})
	m.reindex()
}

func (m *sceneBoard) reindex() {
	clear(m.byPath)
	for i, r := range m.rows {
		m.byPath[r.path] = i
	}
}

func (m *sceneBoard) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	done := 0
	for _, r := range m.rows {
		done += r.steps()
	}
	return float64(done) / float64(len(m.rows)*sceneSteps)
}

func (m *sceneBoard) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	if m.finished {
		b.WriteString(headerStyle.Render(m.title))
	} else {
		b.WriteString(m.spin.View() + " " + headerStyle.Render(m.title))
	}
	b.WriteString("\n\n")

	nameWidth := 0
	for _, r := range m.rows {
		nameWidth = max(nameWidth, runewidth.StringWidth(r.scene))
	}
	nameWidth = min(nameWidth, max(12, m.width-40))

	for _, r := range m.rows {
		name := runewidth.FillRight(clip(r.scene, nameWidth), nameWidth)
		fmt.Fprintf(&b, "  %s  %s", name, stateStyle(r).Render(fmt.Sprintf("%-10s", r.state())))
		if counts := countsText(r.errors, r.warnings); r.checked() && counts != "" {
			b.WriteString("  " + counts)
		}
		if !r.listed {
			b.WriteString("  " + dimStyle.Render("not in *scene_list"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n  " + m.summary() + "\n")
	return b.String()
}

func (m *sceneBoard) summary() string {
	checked, errs, warns := 0, 0, 0
	for _, r := range m.rows {
		if r.checked() {
			checked++
			errs += r.errors
			warns += r.warnings
		}
	}
	line := fmt.Sprintf("%d/%d scenes checked", checked, len(m.rows))
	if counts := countsText(errs, warns); counts != "" {
		line += ", " + counts
	}
	return line
}

func stateStyle(r sceneRow) lipgloss.Style {
	switch r.state() {
	case "clean":
		return cleanStyle
	case "warnings":
		return warningStyle
	case "errors", "unreadable":
		return errorStyle
	case "queued":
		return dimStyle
	}
	return busyStyle
}

func countsText(errs, warns int) string {
	var parts []string
	if errs > 0 {
		parts = append(parts, errorStyle.Render(plural(errs, "error")))
	}
	if warns > 0 {
		parts = append(parts, warningStyle.Render(plural(warns, "warning")))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// sceneName is the scene a file defines: its base name without extension.
func sceneName(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func clip(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
