package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/importer"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateTarget importState = iota
	importStateFilePick
	importStateParsing
	importStatePreview
	importStateResult
)

type importTarget struct {
	year  int
	month int
	tab   string
}

type ImportModel struct {
	CommonModel
	ledgerService *ledger.Service
	importService *importer.Service
	userID        string

	state      importState
	form       *huh.Form
	target     *importTarget
	filePicker filepicker.Model

	items       []ledger.NewItem
	previewList list.Model
	selected    map[int]bool

	status string
	err    error
}

func NewImportModel(ledgerSvc *ledger.Service, impSvc *importer.Service, userID string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	now := time.Now()

	return ImportModel{
		ledgerService: ledgerSvc,
		importService: impSvc,
		userID:        userID,
		filePicker:    fp,
		target:        &importTarget{year: now.Year(), month: int(now.Month()), tab: ledger.TabMain},
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Items" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Space: toggle | a: all | n: none | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadTabsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importTabsMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.form = m.buildTargetForm(msg.tabs)

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.items = msg.items
		m.selected = make(map[int]bool, len(m.items))

		listItems := make([]list.Item, len(m.items))
		for i, it := range m.items {
			m.selected[i] = true
			listItems[i] = previewItem{item: it, index: i}
		}

		delegate := previewDelegate{selected: &m.selected}
		m.previewList = list.New(listItems, delegate, 80, 20)
		m.previewList.Title = fmt.Sprintf("Items for %s", FormatMonth(m.target.year, m.target.month))
		m.previewList.SetShowStatusBar(false)
		m.previewList.SetFilteringEnabled(false)
		m.previewList.SetShowHelp(false)
		m.state = importStatePreview

		return m, nil

	case importDoneMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = describeError(msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d items. %s now totals %s.",
			msg.count, FormatMonth(m.target.year, m.target.month), FormatAmount(msg.ledger.Total))

		return m, nil
	}

	switch m.state {
	case importStateTarget:
		return m.updateTarget(msg)
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateParsing
			m.status = fmt.Sprintf("Reading %s...", path)

			return m, m.parseCmd(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStatePreview, importStateResult:
		m.state = importStateTarget
		m.items = nil
		m.err = nil
		m.status = ""
		m.selected = make(map[int]bool)

		return m, m.loadTabsCmd()
	}

	return m, Back
}

func (m ImportModel) buildTargetForm(tabs []ledger.Tab) *huh.Form {
	years := calendar.YearOptions(time.Now())
	yearOpts := make([]huh.Option[int], 0, len(years))

	for _, y := range years {
		yearOpts = append(yearOpts, huh.NewOption(strconv.Itoa(y), y))
	}

	monthOpts := make([]huh.Option[int], 0, 12)
	for mo := time.January; mo <= time.December; mo++ {
		monthOpts = append(monthOpts, huh.NewOption(mo.String(), int(mo)))
	}

	tabOpts := make([]huh.Option[string], 0, len(tabs))
	for _, t := range tabs {
		tabOpts = append(tabOpts, huh.NewOption(t.Label, t.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().Title("Year").Options(yearOpts...).Value(&m.target.year),
			huh.NewSelect[int]().Title("Month").Options(monthOpts...).Value(&m.target.month),
			huh.NewSelect[string]().Title("Tab").Options(tabOpts...).Value(&m.target.tab),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m ImportModel) updateTarget(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.previewList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.items {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.items {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.importCmd()
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateTarget:
		if m.form == nil {
			return lipgloss.NewStyle().Padding(2).Render("Loading...")
		}

		return lipgloss.NewStyle().Padding(1).Render("Import into:\n\n" + m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a CSV or XLSX file for %s:\n\n%s",
				FormatMonth(m.target.year, m.target.month), m.filePicker.View()),
		)
	case importStateParsing:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.previewList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(colorPaid).Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

// Messages

type importTabsMsg struct {
	tabs []ledger.Tab
	err  error
}

type parseResultMsg struct {
	items []ledger.NewItem
	err   error
}

type importDoneMsg struct {
	ledger *ledger.Ledger
	count  int
	err    error
}

func (m ImportModel) loadTabsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tabs, err := m.ledgerService.ListTabs(ctx, m.userID)
		return importTabsMsg{tabs: tabs, err: err}
	}
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		format, err := importer.FormatFromFilename(path)
		if err != nil {
			return parseResultMsg{err: err}
		}

		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		items, err := m.importService.Import(format, f)

		return parseResultMsg{items: items, err: err}
	}
}

func (m ImportModel) importCmd() tea.Cmd {
	var chosen []ledger.NewItem

	for i, it := range m.items {
		if m.selected[i] {
			chosen = append(chosen, it)
		}
	}

	key := ledger.Key{UserID: m.userID, Year: m.target.year, Month: m.target.month, Tab: m.target.tab}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		l, err := m.ledgerService.ImportItems(ctx, key, chosen)
		if err != nil {
			return importDoneMsg{err: err}
		}

		return importDoneMsg{ledger: l, count: len(chosen)}
	}
}

// Preview list item

type previewItem struct {
	item  ledger.NewItem
	index int
}

func (i previewItem) Title() string       { return i.item.Name }
func (i previewItem) Description() string { return i.item.Note }
func (i previewItem) FilterValue() string { return i.item.Name }

// Preview list delegate

type previewDelegate struct {
	selected *map[int]bool
}

func (d previewDelegate) Height() int                             { return 1 }
func (d previewDelegate) Spacing() int                            { return 0 }
func (d previewDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d previewDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(previewItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%s %10s  %s", cursor, checkbox, FormatAmount(item.item.Amount), item.item.Name)
	if item.item.Note != "" {
		line += lipgloss.NewStyle().Faint(true).Render("  " + item.item.Note)
	}

	fmt.Fprintln(w, line)
}
