package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/daylist/daylist/internal/db"
	"github.com/daylist/daylist/internal/models"
	"github.com/daylist/daylist/internal/parser"
	"github.com/daylist/daylist/internal/session"
	"github.com/daylist/daylist/internal/validate"
)

// TaskStore is the part of the task repository the list needs
type TaskStore interface {
	List(sess session.Session) ([]models.Task, error)
	Create(sess session.Session, req db.NewTask) (*models.Task, error)
	ToggleCompleted(sess session.Session, id string) (*models.Task, error)
	Delete(sess session.Session, id string) error
}

// Mode represents what the list is waiting for
type Mode int

const (
	ModeBrowse Mode = iota
	ModeAdd
	ModeConfirmDelete
)

const defaultTasksPerPage = 10

type tasksLoadedMsg struct {
	tasks    []models.Task
	status   string
	selectID string
}

type errMsg struct{ err error }

// ListModel represents the TUI model for listing tasks
type ListModel struct {
	width  int
	height int

	store TaskStore
	sess  session.Session
	now   func() time.Time

	// Task data
	tasks        []models.Task
	selectedTask int // index in tasks slice
	loaded       bool

	// UI state
	mode   Mode
	input  textinput.Model
	help   help.Model
	status string
	err    error

	// Pagination
	currentPage  int
	tasksPerPage int
}

// NewListModel creates a list bound to sess's tasks
func NewListModel(store TaskStore, sess session.Session, now func() time.Time) ListModel {
	if now == nil {
		now = time.Now
	}

	input := textinput.New()
	input.Placeholder = "Buy milk @shopping due:tomorrow"
	input.CharLimit = 200
	input.Prompt = "New task: "

	return ListModel{
		store:        store,
		sess:         sess,
		now:          now,
		input:        input,
		help:         help.New(),
		tasksPerPage: defaultTasksPerPage,
	}
}

// Init loads the tasks
func (m ListModel) Init() tea.Cmd {
	return m.reload("", "")
}

// Tasks returns the tasks currently shown
func (m ListModel) Tasks() []models.Task { return m.tasks }

// Selected returns the index of the highlighted task
func (m ListModel) Selected() int { return m.selectedTask }

// Mode returns the current input mode
func (m ListModel) Mode() Mode { return m.mode }

// Status returns the last status line
func (m ListModel) Status() string { return m.status }

// Err returns the last error shown to the user
func (m ListModel) Err() error { return m.err }

// Update handles messages
func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Height - header(4) - pagination(2) - status(2) - help(1) - borders(3)
		availableHeight := m.height - 12
		if availableHeight < 3 {
			availableHeight = 3
		}
		m.tasksPerPage = availableHeight
		m = m.clampSelection()
		return m, nil

	case tasksLoadedMsg:
		m.tasks = msg.tasks
		m.loaded = true
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.selectID != "" {
			for i, t := range m.tasks {
				if t.ID == msg.selectID {
					m.selectedTask = i
					break
				}
			}
		}
		m = m.clampSelection()
		return m, nil

	case errMsg:
		m.err = msg.err
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAdd:
			return m.handleAddKeys(msg)
		case ModeConfirmDelete:
			return m.handleConfirmKeys(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			return m.moveSelectionUp(), nil

		case key.Matches(msg, keys.Down):
			return m.moveSelectionDown(), nil

		case key.Matches(msg, keys.PrevPg):
			return m.prevPage(), nil

		case key.Matches(msg, keys.NextPg):
			return m.nextPage(), nil

		case key.Matches(msg, keys.Toggle):
			if task, ok := m.current(); ok {
				return m, m.toggle(task)
			}
			return m, nil

		case key.Matches(msg, keys.Delete):
			if _, ok := m.current(); ok {
				m.mode = ModeConfirmDelete
			}
			return m, nil

		case key.Matches(msg, keys.Add):
			m.mode = ModeAdd
			m.err = nil
			m.input.Reset()
			return m, m.input.Focus()

		case key.Matches(msg, keys.Refresh):
			return m, m.reload("Reloaded", "")
		}
	}

	return m, nil
}

// handleAddKeys handles key input while typing a new task
func (m ListModel) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode = ModeBrowse
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case tea.KeyEnter:
		parsed := parser.ParseTitle(m.input.Value(), m.now())
		if len(parsed.Errors) > 0 {
			m.err = fmt.Errorf("%s", strings.Join(parsed.Errors, "; "))
			return m, nil
		}
		if err := validate.Title(parsed.Title); err != nil {
			m.err = err
			return m, nil
		}
		m.mode = ModeBrowse
		m.input.Blur()
		m.input.Reset()
		return m, m.create(parsed)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleConfirmKeys waits for y to confirm a delete
func (m ListModel) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeBrowse
	if msg.String() != "y" && msg.String() != "Y" {
		m.status = "Delete cancelled"
		return m, nil
	}
	if task, ok := m.current(); ok {
		return m, m.remove(task)
	}
	return m, nil
}

func (m ListModel) current() (models.Task, bool) {
	if m.selectedTask < 0 || m.selectedTask >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.selectedTask], true
}

func (m ListModel) reload(status, selectID string) tea.Cmd {
	store, sess := m.store, m.sess
	return func() tea.Msg {
		tasks, err := store.List(sess)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{tasks: tasks, status: status, selectID: selectID}
	}
}

func (m ListModel) toggle(task models.Task) tea.Cmd {
	store, sess := m.store, m.sess
	return func() tea.Msg {
		updated, err := store.ToggleCompleted(sess, task.ID)
		if err != nil {
			return errMsg{err}
		}
		status := "Marked open: " + updated.Title
		if updated.Completed {
			status = "Completed: " + updated.Title
		}
		return m.reload(status, updated.ID)()
	}
}

func (m ListModel) remove(task models.Task) tea.Cmd {
	store, sess := m.store, m.sess
	return func() tea.Msg {
		if err := store.Delete(sess, task.ID); err != nil {
			return errMsg{err}
		}
		return m.reload("Deleted: "+task.Title, "")()
	}
}

func (m ListModel) create(parsed parser.ParsedTask) tea.Cmd {
	store, sess := m.store, m.sess
	return func() tea.Msg {
		req := db.NewTask{
			Title:        parsed.Title,
			Due:          parsed.DueDate,
			SubtaskCount: parsed.SubtaskCount,
		}
		if parsed.ListName != "" {
			list := parsed.ListName
			color := parser.ColorForList(list)
			req.ListName = &list
			req.TagColor = &color
		}
		task, err := store.Create(sess, req)
		if err != nil {
			return errMsg{err}
		}
		return m.reload("Added: "+task.Title, task.ID)()
	}
}

// clampSelection keeps the selection and page inside the task list
func (m ListModel) clampSelection() ListModel {
	if m.selectedTask >= len(m.tasks) {
		m.selectedTask = len(m.tasks) - 1
	}
	if m.selectedTask < 0 {
		m.selectedTask = 0
	}
	m.currentPage = m.selectedTask / m.tasksPerPage
	return m
}

// moveSelectionUp moves the selection up
func (m ListModel) moveSelectionUp() ListModel {
	if m.selectedTask > 0 {
		m.selectedTask--

		// Auto-pagination: if we scrolled above current page, go to previous page
		currentPageStart := m.currentPage * m.tasksPerPage
		if m.selectedTask < currentPageStart && m.currentPage > 0 {
			m.currentPage--
		}
	}
	return m
}

// moveSelectionDown moves the selection down
func (m ListModel) moveSelectionDown() ListModel {
	if m.selectedTask < len(m.tasks)-1 {
		m.selectedTask++

		// Auto-pagination: if we scrolled below current page, go to next page
		currentPageEnd := min((m.currentPage+1)*m.tasksPerPage-1, len(m.tasks)-1)
		if m.selectedTask > currentPageEnd && m.currentPage < m.pageCount()-1 {
			m.currentPage++
		}
	}
	return m
}

func (m ListModel) pageCount() int {
	return (len(m.tasks) + m.tasksPerPage - 1) / m.tasksPerPage
}

// prevPage goes to previous page
func (m ListModel) prevPage() ListModel {
	if m.currentPage > 0 {
		m.currentPage--
		m.selectedTask = m.currentPage * m.tasksPerPage
	}
	return m
}

// nextPage goes to next page
func (m ListModel) nextPage() ListModel {
	if m.currentPage < m.pageCount()-1 {
		m.currentPage++
		m.selectedTask = m.currentPage * m.tasksPerPage
	}
	return m
}

// View renders the TUI
func (m ListModel) View() string {
	if m.width == 0 || m.height == 0 || !m.loaded {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100 // 60% for table
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskTable(leftWidth),
		" ",
		m.renderTaskDetails(rightWidth),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		"",
		content,
		m.renderStatusLine(),
		m.renderFooter(),
	)
}

// renderTaskTable renders the left panel with the task table
func (m ListModel) renderTaskTable(width int) string {
	var b strings.Builder
	now := m.now()

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright))

	header := "Tasks"
	if m.sess.Email != "" {
		header += " · " + m.sess.Email
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Italic(true)
		b.WriteString(emptyStyle.Render("No tasks yet. Press a to add one."))
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Width(width).
			Render(b.String())
	}

	// Calculate column widths for the available space
	availableWidth := width - 4
	statusWidth := 3
	dueWidth := 9
	listWidth := 12
	titleWidth := availableWidth - statusWidth - dueWidth - listWidth - 6
	if titleWidth < 12 {
		titleWidth = 12
	}

	columnHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Padding(0, 1)
	headers := fmt.Sprintf("%-*s %-*s %-*s %-*s",
		statusWidth, "",
		titleWidth, "TITLE",
		listWidth, "LIST",
		dueWidth, "DUE")
	b.WriteString(columnHeaderStyle.Render(headers))
	b.WriteString("\n")

	startIndex := m.currentPage * m.tasksPerPage
	endIndex := min(startIndex+m.tasksPerPage, len(m.tasks))

	for i := startIndex; i < endIndex; i++ {
		task := m.tasks[i]

		status := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render("○")
		titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		if task.Completed {
			status = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render("✓")
			titleStyle = titleStyle.Foreground(lipgloss.Color(ColorDisabledText)).Strikethrough(true)
		}

		title := Truncate(task.Title, titleWidth)

		list := "-"
		listStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
		if task.ListName != nil {
			list = Truncate(*task.ListName, listWidth)
			if task.TagColor != nil {
				listStyle = listStyle.Foreground(lipgloss.Color(*task.TagColor))
			}
		}

		due := parser.ShortDue(task.Due, now)

		rowContent := fmt.Sprintf("%-*s %s %s %s",
			statusWidth, status,
			titleStyle.Render(fmt.Sprintf("%-*s", titleWidth, title)),
			listStyle.Render(fmt.Sprintf("%-*s", listWidth, list)),
			dueStyle(task, now).Render(fmt.Sprintf("%-*s", dueWidth, due)))

		if i == m.selectedTask {
			selected := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorAccentMain)).
				Bold(true).
				Padding(0, 1)
			b.WriteString(selected.Render(rowContent))
		} else {
			b.WriteString("  " + rowContent)
		}
		b.WriteString("\n")
	}

	if m.tasksPerPage < len(m.tasks) {
		pageInfo := fmt.Sprintf("Page %d/%d (%d tasks)", m.currentPage+1, m.pageCount(), len(m.tasks))
		pageStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Align(lipgloss.Center).
			Width(width - 2).
			MarginTop(1)
		b.WriteString(pageStyle.Render(pageInfo))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

// renderTaskDetails renders the right panel with task details
func (m ListModel) renderTaskDetails(width int) string {
	var b strings.Builder
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))

	task, ok := m.current()
	if !ok {
		logoStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccentMain)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width)
		b.WriteString(logoStyle.Render("daylist"))
	} else {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Width(width - 2)
		b.WriteString(titleStyle.Render(task.Title))
		b.WriteString("\n\n")

		b.WriteString(labelStyle.Render("Status: "))
		if task.Completed {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render("done"))
			if task.CompletedAt != nil {
				b.WriteString(labelStyle.Render(" on " + task.CompletedAt.Local().Format("02/01/2006")))
			}
		} else {
			b.WriteString("open")
		}
		b.WriteString("\n")

		if task.ListName != nil {
			b.WriteString(labelStyle.Render("List: "))
			style := lipgloss.NewStyle()
			if task.TagColor != nil {
				style = style.Foreground(lipgloss.Color(*task.TagColor))
			}
			b.WriteString(style.Render(*task.ListName))
			b.WriteString("\n")
		}

		if task.Due != nil {
			b.WriteString(labelStyle.Render("Due: "))
			b.WriteString(dueStyle(task, m.now()).Render(parser.FormatDueDate(task.Due, m.now())))
			b.WriteString("\n")
		}

		if task.SubtaskCount > 0 {
			b.WriteString(labelStyle.Render("Subtasks: "))
			b.WriteString(fmt.Sprintf("%d", task.SubtaskCount))
			b.WriteString("\n")
		}

		b.WriteString(labelStyle.Render("ID: " + task.ShortID()))
		b.WriteString("\n")

		if task.Description != nil {
			b.WriteString("\n")
			noteStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSecondaryText)).
				Italic(true).
				Width(width - 2)
			b.WriteString(noteStyle.Render(*task.Description))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width).
		Render(b.String())
}

// renderStatusLine shows the last error or action result
func (m ListModel) renderStatusLine() string {
	switch {
	case m.mode == ModeAdd:
		return m.input.View()
	case m.mode == ModeConfirmDelete:
		task, _ := m.current()
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).
			Render(fmt.Sprintf("Delete %q? (y/N)", task.Title))
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("Error: " + m.err.Error())
	case m.status != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.status)
	}
	return ""
}

// renderFooter renders the hotkey hints
func (m ListModel) renderFooter() string {
	if m.mode == ModeAdd {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Italic(true).
			Render("enter save · esc cancel · @list due:tomorrow subtasks:3")
	}
	return m.help.View(keys)
}

func dueStyle(task models.Task, now time.Time) lipgloss.Style {
	style := lipgloss.NewStyle()
	if task.Due == nil || task.Completed {
		return style.Foreground(lipgloss.Color(ColorDisabledText))
	}
	switch days := parser.DaysUntil(task.Due.In(now.Location()), now); {
	case days < 0:
		return style.Foreground(lipgloss.Color(ColorError))
	case days <= 1:
		return style.Foreground(lipgloss.Color(ColorWarning))
	case days <= 7:
		return style.Foreground(lipgloss.Color(ColorAccentBright))
	}
	return style
}

// Truncate shortens s to at most width runes, ending in "..." when cut
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width > 3 {
		return string(r[:width-3]) + "..."
	}
	return string(r[:width])
}
