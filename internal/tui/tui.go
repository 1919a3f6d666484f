// Package tui is the interactive task editor. Every confirmed action goes
// straight to the store, so the list on disk always matches the screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/store"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

// Options set the initial view state. None of it is persisted.
type Options struct {
	ShowCompleted bool
}

type mode int

const (
	modeBrowse mode = iota
	modeCreate
	modeEdit
)

// listItem adapts model.Task to bubbles/list.Item.
type listItem struct {
	task model.Task
	pos  int // 1-based position in the full collection
}

func (i listItem) FilterValue() string { return i.task.Name + " " + i.task.Description }

// itemDelegate renders each task on one line, plus its description if any.
// Both rows are flattened to a single line; Height must hold.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 2 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	name := ui.OneLine(it.task.Name)
	if it.task.Completed {
		box = successStyle.Render(boxChecked)
		name = doneStyle.Render(name)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}
	num := mutedStyle.Render(fmt.Sprintf("%2d.", it.pos))
	fmt.Fprintf(w, "%s%s %s %s %s\n", prefix, num, box, name, priorityTag(it.task.Priority))
	desc := ui.OneLine(it.task.Description)
	if width := m.Width() - 8; width > 0 {
		desc = runewidth.Truncate(desc, width, "…")
	}
	fmt.Fprint(w, "        "+mutedStyle.Render(desc))
}

// Model is the Bubble Tea model. Form fields, the edit buffer and the filter
// flag live here only.
type Model struct {
	ctx   context.Context
	store *store.Store

	list          list.Model
	showCompleted bool
	mode          mode

	// creation form
	name        textinput.Model
	desc        textarea.Model
	priority    model.Priority
	descFocused bool

	// inline edit
	edit   textinput.Model
	editID string

	status string
	err    string
	width  int
	height int
}

// New builds the editor over an already loaded store.
func New(ctx context.Context, st *store.Store, opt Options) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Tasks"
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	// keep d and f free for delete and the completed filter
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l/pgdn", "next page"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h/pgup", "prev page"))
	l.KeyMap.Quit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.browse
	l.AdditionalFullHelpKeys = keys.browse

	name := textinput.New()
	name.Prompt = "> "
	name.Placeholder = "Task name"
	name.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Task description"
	desc.ShowLineNumbers = false
	desc.SetHeight(3)
	desc.CharLimit = 1000

	edit := textinput.New()
	edit.Prompt = "> "
	edit.CharLimit = 200

	m := Model{
		ctx:           ctx,
		store:         st,
		list:          l,
		showCompleted: opt.ShowCompleted,
		name:          name,
		desc:          desc,
		priority:      model.PriorityLow,
		edit:          edit,
		width:         80,
		height:        24,
	}
	m.refresh(st.Tasks())
	m.resize()
	return m
}

// Run starts the editor and blocks until the user quits.
func Run(ctx context.Context, st *store.Store, opt Options) error {
	p := tea.NewProgram(New(ctx, st, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	switch m.mode {
	case modeCreate:
		return m.updateCreate(msg)
	case modeEdit:
		return m.updateEdit(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, isKey := msg.(tea.KeyMsg)
	if !isKey || m.list.SettingFilter() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(km, keys.Quit):
		return m, tea.Quit

	case key.Matches(km, keys.Toggle):
		if it, ok := m.selected(); ok {
			return m, m.apply(m.store.ToggleCompleted(m.ctx, it.task.ID))
		}
		return m, nil

	case key.Matches(km, keys.Delete):
		if it, ok := m.selected(); ok {
			cmd := m.apply(m.store.Delete(m.ctx, it.task.ID))
			if m.err == "" {
				m.status = "deleted " + it.task.Name
			}
			return m, cmd
		}
		return m, nil

	case key.Matches(km, keys.Filter):
		m.showCompleted = !m.showCompleted
		return m, m.refresh(m.store.Tasks())

	case key.Matches(km, keys.Add):
		m.mode = modeCreate
		m.err, m.status = "", ""
		m.name.SetValue("")
		m.desc.SetValue("")
		m.priority = model.PriorityLow
		m.descFocused = false
		m.desc.Blur()
		m.resize()
		return m, m.name.Focus()

	case key.Matches(km, keys.Edit):
		if it, ok := m.selected(); ok {
			m.mode = modeEdit
			m.err, m.status = "", ""
			m.editID = it.task.ID
			m.edit.SetValue(it.task.Name)
			m.edit.CursorEnd()
			m.resize()
			return m, m.edit.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Cancel):
			m.closeForm()
			return m, nil

		case key.Matches(km, keys.NextField):
			m.descFocused = !m.descFocused
			if m.descFocused {
				m.name.Blur()
				return m, m.desc.Focus()
			}
			m.desc.Blur()
			return m, m.name.Focus()

		case key.Matches(km, keys.Priority):
			m.priority = m.priority.Next()
			return m, nil

		case key.Matches(km, keys.Submit), km.Type == tea.KeyEnter && !m.descFocused:
			return m.submitCreate()
		}
	}

	var cmd tea.Cmd
	if m.descFocused {
		m.desc, cmd = m.desc.Update(msg)
	} else {
		m.name, cmd = m.name.Update(msg)
		if m.store.Acceptable(m.name.Value()) {
			m.err = ""
		}
	}
	return m, cmd
}

func (m Model) submitCreate() (tea.Model, tea.Cmd) {
	if !m.store.Acceptable(m.name.Value()) {
		m.err = fmt.Sprintf("Name must be longer than %d characters", m.store.MinLength())
		return m, nil
	}
	tasks, err := m.store.Add(m.ctx, model.Draft{
		Name:        m.name.Value(),
		Description: strings.TrimSpace(m.desc.Value()),
		Priority:    m.priority,
	})
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	cmd := m.refresh(tasks)
	m.closeForm()
	m.status = "added"
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Cancel):
			m.closeForm()
			return m, nil
		case km.Type == tea.KeyEnter, key.Matches(km, keys.Submit):
			tasks, err := m.store.Edit(m.ctx, m.editID, m.edit.Value())
			if errors.Is(err, store.ErrRejected) {
				m.err = fmt.Sprintf("Name must be longer than %d characters", m.store.MinLength())
				return m, nil
			}
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			cmd := m.refresh(tasks)
			m.closeForm()
			m.status = "saved"
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

// apply shows the result of a store call. On failure the list is left as is
// and m.err is set.
func (m *Model) apply(tasks []model.Task, err error) tea.Cmd {
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.err = ""
	return m.refresh(tasks)
}

func (m *Model) closeForm() {
	m.mode = modeBrowse
	m.err = ""
	m.name.Blur()
	m.desc.Blur()
	m.edit.Blur()
	m.editID = ""
	m.resize()
}

func (m *Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// refresh rebuilds the visible items, keeping the cursor where it was. The
// returned command re-runs an active fuzzy filter.
func (m *Model) refresh(tasks []model.Task) tea.Cmd {
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i + 1
	}
	shown := model.Visible(tasks, m.showCompleted)
	items := make([]list.Item, len(shown))
	for i, t := range shown {
		items[i] = listItem{task: t, pos: pos[t.ID]}
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}

	d, p := model.Stats(tasks)
	title := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		"Tasks",
		successStyle.Render("✔"), d,
		pendingStyle.Render("•"), p,
		accentStyle.Render("Total"), len(tasks),
	)
	if !m.showCompleted {
		title += "  " + mutedStyle.Render("(hiding done)")
	}
	m.list.Title = title
	return cmd
}

func (m *Model) resize() {
	h := m.height - 4
	if m.mode != modeBrowse {
		h -= 8
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
	m.desc.SetWidth(max(m.width-10, 20))
}

// View implements tea.Model.
func (m Model) View() string {
	content := m.list.View()
	if len(m.list.Items()) == 0 && !m.list.SettingFilter() {
		content = m.list.Title + "\n\n" + mutedStyle.Render("No tasks to display")
	}

	switch m.mode {
	case modeCreate:
		content += "\n" + m.formView()
	case modeEdit:
		title := "Edit task"
		if m.err != "" {
			title += " " + errorStyle.Render(m.err)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.edit.View())
	default:
		if m.err != "" {
			content += "\n" + errorStyle.Render("✖ "+m.err)
		} else if m.status != "" {
			content += "\n" + successStyle.Render("✔ "+m.status)
		}
	}
	return panelStyle.Render(content)
}

func (m Model) formView() string {
	title := "Add a task"
	if m.err != "" {
		title += " " + errorStyle.Render(m.err)
	}
	save := accentStyle.Render("[ Save ]")
	if !m.store.Acceptable(m.name.Value()) {
		save = mutedStyle.Render("[ Save ]")
	}
	help := make([]string, 0, 4)
	for _, b := range keys.form() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.name.View(),
		m.desc.View(),
		"Priority: "+priorityTag(m.priority)+"   "+save,
		helpStyle.Render(strings.Join(help, " • ")),
	)
	return panelStyle.Render(body)
}
