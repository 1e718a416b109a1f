package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type tabsState int

const (
	tabsStateBrowse tabsState = iota
	tabsStateForm
)

type tabForm struct {
	key     string
	label   string
	confirm bool
}

type TabsModel struct {
	CommonModel
	ledgerService *ledger.Service
	userID        string

	state  tabsState
	table  table.Model
	tabs   []ledger.Tab
	form   *huh.Form
	fields *tabForm
	remove bool

	status string
	err    error
}

func NewTabsModel(svc *ledger.Service, userID string) TabsModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Label", Width: 30},
			{Title: "Key", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	return TabsModel{
		ledgerService: svc,
		userID:        userID,
		table:         t,
	}
}

func (m TabsModel) Title() string { return "Tabs" }
func (m TabsModel) ShortHelp() string {
	if m.state == tabsStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | r: rename | x: delete"
}

func (m TabsModel) Init() tea.Cmd {
	return m.loadCmd("")
}

func (m TabsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if loaded, ok := msg.(tabsLoadedMsg); ok {
		if loaded.err != nil {
			m.err = loaded.err
			return m, nil
		}

		m.tabs = loaded.tabs
		m.status = loaded.note

		rows := make([]table.Row, 0, len(m.tabs))
		for _, t := range m.tabs {
			rows = append(rows, table.Row{t.Label, t.Key})
		}

		m.table.SetRows(rows)

		if len(rows) > 0 && m.table.Cursor() >= len(rows) {
			m.table.SetCursor(len(rows) - 1)
		}

		return m, nil
	}

	if m.state == tabsStateForm {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "n":
		return m.openForm(ledger.Tab{}, false)
	case "r", "x":
		idx := m.table.Cursor()
		if idx < 0 || idx >= len(m.tabs) {
			return m, nil
		}

		if keyMsg.String() == "x" && m.tabs[idx].Key == ledger.TabMain {
			m.status = "The main tab cannot be deleted."
			return m, nil
		}

		return m.openForm(m.tabs[idx], keyMsg.String() == "x")
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TabsModel) openForm(tab ledger.Tab, remove bool) (tea.Model, tea.Cmd) {
	m.fields = &tabForm{key: tab.Key, label: tab.Label}
	m.remove = remove

	var field huh.Field = huh.NewInput().
		Key("label").
		Title("Label").
		Placeholder("Leave empty for a numbered tab").
		Value(&m.fields.label)

	if remove {
		field = huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its months?", tab.Label)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&m.fields.confirm)
	}

	m.form = huh.NewForm(huh.NewGroup(field)).WithWidth(50).WithShowHelp(false)
	m.state = tabsStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m TabsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = tabsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = tabsStateBrowse
	m.form = nil
	m.table.Focus()

	return m, m.saveCmd(*m.fields, m.remove)
}

func (m TabsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.state == tabsStateForm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type tabsLoadedMsg struct {
	tabs []ledger.Tab
	note string
	err  error
}

func (m TabsModel) loadCmd(note string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tabs, err := m.ledgerService.ListTabs(ctx, m.userID)
		return tabsLoadedMsg{tabs: tabs, note: note, err: err}
	}
}

func (m TabsModel) saveCmd(f tabForm, remove bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		note, err := m.save(ctx, f, remove)
		if err != nil {
			note = describeError(err)
		}

		tabs, err := m.ledgerService.ListTabs(ctx, m.userID)

		return tabsLoadedMsg{tabs: tabs, note: note, err: err}
	}
}

func (m TabsModel) save(ctx context.Context, f tabForm, remove bool) (string, error) {
	switch {
	case remove && !f.confirm:
		return "", nil
	case remove:
		if err := m.ledgerService.DeleteTab(ctx, m.userID, f.key); err != nil {
			return "", err
		}

		return "Tab deleted.", nil
	case f.key == "":
		tab, err := m.ledgerService.CreateTab(ctx, m.userID, f.label)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Created %q.", tab.Label), nil
	default:
		tab, err := m.ledgerService.RenameTab(ctx, m.userID, f.key, f.label)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Renamed to %q.", tab.Label), nil
	}
}
