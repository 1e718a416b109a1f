package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type monthState int

const (
	monthStateBrowse monthState = iota
	monthStateForm
)

type monthAction int

const (
	actionAdd monthAction = iota
	actionEdit
	actionPayItem
	actionSpread
	actionNote
)

func (a monthAction) title() string {
	switch a {
	case actionAdd:
		return "Add Item"
	case actionEdit:
		return "Edit Item"
	case actionPayItem:
		return "Partial Payment"
	case actionSpread:
		return "Pay Across Unpaid Items"
	case actionNote:
		return "Note"
	}

	return ""
}

// monthForm holds the values bound to the open form. It lives behind a
// pointer so the bindings survive the model being copied by Update.
type monthForm struct {
	itemID string
	name   string
	amount string
	note   string
}

type MonthModel struct {
	CommonModel
	ledgerService *ledger.Service
	key           ledger.Key

	tabs   []ledger.Tab
	ledger *ledger.Ledger

	state  monthState
	action monthAction
	table  table.Model
	form   *huh.Form
	fields *monthForm

	loading bool
	status  string
	err     error
}

func NewMonthModel(svc *ledger.Service, key ledger.Key) MonthModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Amount", Width: 10},
		{Title: "Paid", Width: 10},
		{Title: "Remaining", Width: 10},
		{Title: "Status", Width: 8},
		{Title: "Note", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return MonthModel{
		ledgerService: svc,
		key:           key.WithDefaultTab(),
		table:         t,
		loading:       true,
	}
}

func (m MonthModel) Title() string { return FormatMonth(m.key.Year, m.key.Month) }
func (m MonthModel) ShortHelp() string {
	if m.state == monthStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | e: edit | x: delete | p: paid | u: undo | i: pay part | s: spread payment | m: mark all paid | n: note | t: tab | < >: month"
}

func (m MonthModel) Init() tea.Cmd {
	return tea.Batch(m.loadTabsCmd(), m.loadCmd())
}

func (m MonthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case monthTabsMsg:
		if msg.err == nil {
			m.tabs = msg.tabs
		}

		return m, nil

	case monthLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = describeError(msg.err)
			return m, nil
		}

		m.ledger = msg.ledger
		m.status = msg.note
		m.err = nil
		m.refreshTable()

		return m, nil

	case monthLoadFailedMsg:
		m.loading = false
		m.err = msg.err

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case monthStateBrowse:
		return m.updateBrowse(msg)
	case monthStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m MonthModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	item, hasItem := m.selected()

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "a":
		return m.openForm(actionAdd, ledger.Item{})
	case "s":
		return m.openForm(actionSpread, ledger.Item{})
	case "m":
		return m, m.runCmd("All items marked paid.", func(ctx context.Context) (*ledger.Ledger, error) {
			return m.ledgerService.MarkAllFullyPaid(ctx, m.key)
		})
	case "t":
		return m.switchTab()
	case "<", ",":
		return m.shiftMonth(-1)
	case ">", ".":
		return m.shiftMonth(1)
	case "r":
		m.loading = true
		return m, m.loadCmd()
	}

	if hasItem {
		switch keyMsg.String() {
		case "e":
			return m.openForm(actionEdit, item)
		case "i":
			return m.openForm(actionPayItem, item)
		case "n":
			return m.openForm(actionNote, item)
		case "p":
			return m, m.runCmd(fmt.Sprintf("%s paid.", item.Name), func(ctx context.Context) (*ledger.Ledger, error) {
				return m.ledgerService.MarkFullyPaid(ctx, m.key, item.ID)
			})
		case "u":
			return m, m.runCmd(fmt.Sprintf("%s set back to unpaid.", item.Name), func(ctx context.Context) (*ledger.Ledger, error) {
				return m.ledgerService.UndoPaid(ctx, m.key, item.ID)
			})
		case "x":
			return m, m.runCmd(fmt.Sprintf("%s deleted.", item.Name), func(ctx context.Context) (*ledger.Ledger, error) {
				return m.ledgerService.DeleteItem(ctx, m.key, item.ID)
			})
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MonthModel) switchTab() (tea.Model, tea.Cmd) {
	if len(m.tabs) < 2 {
		return m, nil
	}

	idx := 0

	for i, t := range m.tabs {
		if t.Key == m.key.Tab {
			idx = (i + 1) % len(m.tabs)
			break
		}
	}

	m.key.Tab = m.tabs[idx].Key
	m.loading = true

	return m, m.loadCmd()
}

func (m MonthModel) shiftMonth(delta int) (tea.Model, tea.Cmd) {
	month := m.key.Month + delta
	year := m.key.Year

	switch {
	case month < 1:
		month, year = 12, year-1
	case month > 12:
		month, year = 1, year+1
	}

	m.key.Year, m.key.Month = year, month
	m.loading = true

	return m, m.loadCmd()
}

func (m MonthModel) selected() (ledger.Item, bool) {
	if m.ledger == nil {
		return ledger.Item{}, false
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.ledger.Items) {
		return ledger.Item{}, false
	}

	return m.ledger.Items[idx], true
}

func (m MonthModel) openForm(action monthAction, item ledger.Item) (tea.Model, tea.Cmd) {
	m.fields = &monthForm{
		itemID: item.ID,
		name:   item.Name,
		note:   item.Note,
	}

	if action == actionEdit {
		m.fields.amount = FormatAmount(item.Amount)
	}

	m.action = action
	m.form = m.buildForm(action, item)
	m.state = monthStateForm
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m MonthModel) buildForm(action monthAction, item ledger.Item) *huh.Form {
	name := huh.NewInput().
		Key("name").
		Title("Name").
		Value(&m.fields.name).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("name cannot be empty")
			}

			return nil
		})

	amount := huh.NewInput().
		Key("amount").
		Title("Amount").
		Placeholder("0.00").
		Value(&m.fields.amount).
		Validate(validateAmount)

	var fields []huh.Field

	switch action {
	case actionAdd, actionEdit:
		fields = []huh.Field{name, amount}
	case actionPayItem:
		fields = []huh.Field{amount.
			Title("Amount to pay").
			Description(fmt.Sprintf("Remaining on %s: %s", item.Name, FormatAmount(item.Remaining())))}
	case actionSpread:
		remaining := "0.00"
		if m.ledger != nil {
			remaining = FormatAmount(m.ledger.UnpaidTotal())
		}

		fields = []huh.Field{amount.
			Title("Amount to pay").
			Description(fmt.Sprintf("Paid into unpaid items in order. Unpaid total: %s", remaining))}
	case actionNote:
		fields = []huh.Field{huh.NewText().
			Key("note").
			Title("Note").
			Description("Leave empty to remove the note").
			Value(&m.fields.note)}
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
}

func (m MonthModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	submit := m.submitCmd()

	return m.closeForm(), submit
}

func (m MonthModel) closeForm() MonthModel {
	m.state = monthStateBrowse
	m.form = nil
	m.table.Focus()

	return m
}

func (m MonthModel) submitCmd() tea.Cmd {
	f := *m.fields
	key := m.key

	// Inputs were validated by the form, so parse errors cannot happen here.
	amount, _ := ledger.ParseAmount(f.amount)

	switch m.action {
	case actionAdd:
		return m.runCmd(fmt.Sprintf("%s added.", strings.TrimSpace(f.name)), func(ctx context.Context) (*ledger.Ledger, error) {
			return m.ledgerService.AddItem(ctx, key, f.name, amount)
		})
	case actionEdit:
		return m.runCmd("Item updated.", func(ctx context.Context) (*ledger.Ledger, error) {
			l, err := m.ledgerService.EditItem(ctx, key, f.itemID, &f.name, &amount)
			if err != nil {
				return nil, err
			}

			if it, ok := l.Item(f.itemID); ok && it.Overpaid() {
				return l, fmt.Errorf("%w: %s is now below the %s already paid",
					errOverpaid, FormatAmount(it.Amount), FormatAmount(it.AmountPaid))
			}

			return l, nil
		})
	case actionPayItem:
		return m.runCmd("Payment recorded.", func(ctx context.Context) (*ledger.Ledger, error) {
			return m.ledgerService.AllocateToItem(ctx, key, f.itemID, amount)
		})
	case actionSpread:
		return m.runCmd("Payment spread across unpaid items.", func(ctx context.Context) (*ledger.Ledger, error) {
			return m.ledgerService.AllocateAcrossUnpaid(ctx, key, amount)
		})
	case actionNote:
		return m.runCmd("Note saved.", func(ctx context.Context) (*ledger.Ledger, error) {
			return m.ledgerService.SetNote(ctx, key, f.itemID, strings.TrimSpace(f.note))
		})
	}

	return nil
}

func (m MonthModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.loading || m.ledger == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading " + FormatMonth(m.key.Year, m.key.Month) + "...")
	}

	header := fmt.Sprintf("%s  |  [t] Tab: %s  |  Status: %s",
		activeStyle(FormatMonth(m.key.Year, m.key.Month)),
		activeStyle(tabLabel(m.tabs, m.key.Tab)),
		statusStyle(m.ledger.Status),
	)

	totals := fmt.Sprintf("Total %s  |  Paid %s  |  Outstanding %s",
		FormatAmount(m.ledger.Total),
		FormatAmount(m.ledger.PaidTotal),
		FormatAmount(m.ledger.Outstanding()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render(totals),
	)

	if m.state == monthStateForm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", m.action.title(), m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *MonthModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.ledger.Items))

	for _, it := range m.ledger.Items {
		state := "unpaid"

		switch {
		case it.Overpaid():
			state = "over"
		case it.Paid:
			state = "paid"
		case it.AmountPaid.IsPositive():
			state = "partial"
		}

		rows = append(rows, table.Row{
			it.Name,
			FormatAmount(it.Amount),
			FormatAmount(it.AmountPaid),
			FormatAmount(it.Remaining()),
			state,
			strings.ReplaceAll(it.Note, "\n", " "),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Messages

var errOverpaid = errors.New("amount below payments")

type monthLoadedMsg struct {
	ledger *ledger.Ledger
	note   string
	err    error
}

type monthLoadFailedMsg struct {
	err error
}

type monthTabsMsg struct {
	tabs []ledger.Tab
	err  error
}

func (m MonthModel) loadCmd() tea.Cmd {
	key := m.key

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		l, err := m.ledgerService.Get(ctx, key)
		if err != nil {
			return monthLoadFailedMsg{err: err}
		}

		return monthLoadedMsg{ledger: l}
	}
}

func (m MonthModel) loadTabsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tabs, err := m.ledgerService.ListTabs(ctx, m.key.UserID)
		return monthTabsMsg{tabs: tabs, err: err}
	}
}

// runCmd performs a ledger action and reports the resulting ledger. When the
// action fails the current ledger is reloaded so the table stays accurate.
func (m MonthModel) runCmd(done string, action func(ctx context.Context) (*ledger.Ledger, error)) tea.Cmd {
	key := m.key

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		l, err := action(ctx)
		if err == nil {
			return monthLoadedMsg{ledger: l, note: done}
		}

		if l != nil {
			return monthLoadedMsg{ledger: l, note: describeError(err)}
		}

		current, loadErr := m.ledgerService.Get(ctx, key)
		if loadErr != nil {
			return monthLoadedMsg{err: err}
		}

		return monthLoadedMsg{ledger: current, note: describeError(err)}
	}
}
