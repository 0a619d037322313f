package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgarnier/crewplan/internal/models"
)

// TaskLoader feeds the board; it is called on startup and on refresh.
type TaskLoader func() ([]models.Task, error)

type boardModel struct {
	table  table.Model
	load   TaskLoader
	tasks  []models.Task
	err    error
	detail string
}

// RunBoard opens the interactive task board.
func RunBoard(load TaskLoader) error {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Ref", Width: 13},
		{Title: "Type", Width: 12},
		{Title: "Status", Width: 11},
		{Title: "Planned", Width: 12},
		{Title: "Pri", Width: 3},
		{Title: "Crews", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(ColorBlue).BorderBottom(true)
	styles.Selected = SelectedStyle
	t.SetStyles(styles)

	m := boardModel{table: t, load: load}
	m.refresh()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *boardModel) refresh() {
	tasks, err := m.load()
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.tasks = tasks

	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		var crews []string
		for _, c := range t.Crews {
			crews = append(crews, c.Name)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", t.ID),
			t.Reference,
			t.TaskType,
			string(t.Status),
			t.PlannedStart.Format("2006-01-02"),
			fmt.Sprintf("%d", t.Priority),
			strings.Join(crews, ","),
		})
	}
	m.table.SetRows(rows)
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.refresh()
			return m, nil
		case "enter":
			m.detail = m.renderDetail()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) renderDetail() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.tasks) {
		return ""
	}
	t := m.tasks[idx]

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  [%s]\n", t.Reference, t.TaskType, TaskStatus(t.Status))
	fmt.Fprintf(&b, "planned %s..%s",
		t.PlannedStart.Format("2006-01-02"), t.PlannedEnd.Format("2006-01-02"))
	if t.EstimatedHours != nil {
		fmt.Fprintf(&b, "  %.2fh", *t.EstimatedHours)
	}
	b.WriteString("\n")
	for _, d := range t.Distributions {
		fmt.Fprintf(&b, "  %s %5.2fh [%s]\n",
			d.Date.Format("2006-01-02"), d.PlannedHours, DistStatus(d.Status))
	}
	return b.String()
}

func (m boardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n\npress q to quit", m.err)
	}

	view := HeaderStyle.Render("crewplan board") + "\n\n" + m.table.View() + "\n"
	if m.detail != "" {
		view += lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Render(m.detail) + "\n"
	}
	view += DimStyle.Render("↑/↓ move · enter details · r refresh · q quit")
	return view
}
