package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const tilesPerRow = 4

type CalendarModel struct {
	CommonModel
	calendarService *calendar.Service
	ledgerService   *ledger.Service
	userID          string

	years  []int
	year   int
	cursor int

	// tabIdx -1 shows every tab merged.
	tabs   []ledger.Tab
	tabIdx int

	summary *calendar.Year
	loading bool
	err     error
}

func NewCalendarModel(cal *calendar.Service, ledgers *ledger.Service, userID string) CalendarModel {
	now := time.Now()

	return CalendarModel{
		calendarService: cal,
		ledgerService:   ledgers,
		userID:          userID,
		years:           calendar.YearOptions(now),
		year:            now.Year(),
		cursor:          int(now.Month()) - 1,
		tabIdx:          -1,
		loading:         true,
	}
}

func (m CalendarModel) Title() string { return "Calendar" }
func (m CalendarModel) ShortHelp() string {
	return "Esc: back | arrows: move | [ ]: year | t: tab | Enter: open month | r: refresh"
}

func (m CalendarModel) Init() tea.Cmd {
	return tea.Batch(m.loadTabsCmd(), m.loadYearCmd())
}

func (m CalendarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarTabsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.tabs = msg.tabs
		if m.tabIdx >= len(m.tabs) {
			m.tabIdx = -1
		}

		return m, nil

	case calendarYearMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary

		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m CalendarModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Back
	case "left", "h":
		m.cursor = (m.cursor + 11) % 12
	case "right", "l":
		m.cursor = (m.cursor + 1) % 12
	case "up", "k":
		m.cursor = (m.cursor + 12 - tilesPerRow) % 12
	case "down", "j":
		m.cursor = (m.cursor + tilesPerRow) % 12
	case "[":
		return m.shiftYear(-1)
	case "]":
		return m.shiftYear(1)
	case "t":
		m.tabIdx++
		if m.tabIdx >= len(m.tabs) {
			m.tabIdx = -1
		}

		m.loading = true

		return m, m.loadYearCmd()
	case "r":
		m.loading = true
		return m, tea.Batch(m.loadTabsCmd(), m.loadYearCmd())
	case "enter":
		tab := ledger.TabMain
		if key := m.tabKey(); key != "" {
			tab = key
		}

		year, month := m.year, m.cursor+1

		return m, func() tea.Msg {
			return OpenMonthMsg{Year: year, Month: month, Tab: tab}
		}
	}

	return m, nil
}

func (m CalendarModel) shiftYear(delta int) (tea.Model, tea.Cmd) {
	idx := slices.Index(m.years, m.year) + delta
	if idx < 0 || idx >= len(m.years) {
		return m, nil
	}

	m.year = m.years[idx]
	m.loading = true

	return m, m.loadYearCmd()
}

func (m CalendarModel) tabKey() string {
	if m.tabIdx < 0 || m.tabIdx >= len(m.tabs) {
		return ""
	}

	return m.tabs[m.tabIdx].Key
}

func (m CalendarModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	tabName := "All tabs"
	if key := m.tabKey(); key != "" {
		tabName = tabLabel(m.tabs, key)
	}

	header := fmt.Sprintf("Year: %s  |  Tab: %s", activeStyle(fmt.Sprint(m.year)), activeStyle(tabName))

	if m.loading || m.summary == nil {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\nLoading...")
	}

	var rows []string

	for start := 0; start < 12; start += tilesPerRow {
		tiles := make([]string, 0, tilesPerRow)
		for i := start; i < start+tilesPerRow; i++ {
			tiles = append(tiles, m.tile(m.summary.Months[i], i == m.cursor))
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}

	footer := fmt.Sprintf("Year total %s  |  paid %s  |  outstanding %s",
		FormatAmount(m.summary.Total),
		FormatAmount(m.summary.PaidTotal),
		FormatAmount(m.summary.Outstanding),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		strings.Join(rows, "\n"),
		lipgloss.NewStyle().PaddingTop(1).Faint(true).Render(footer),
	))
}

func (m CalendarModel) tile(s calendar.MonthSummary, selected bool) string {
	color := colorEmpty
	status := "-"

	if s.Exists {
		color = statusColor(s.Status)
		status = string(s.Status)
	}

	border := lipgloss.NormalBorder()
	if selected {
		border = lipgloss.ThickBorder()
	}

	body := fmt.Sprintf("%s\n%s\n%s",
		lipgloss.NewStyle().Bold(true).Render(time.Month(s.Month).String()[:3]),
		lipgloss.NewStyle().Foreground(color).Render(status),
		FormatAmount(s.Total),
	)

	return lipgloss.NewStyle().
		Width(14).
		Padding(0, 1).
		BorderStyle(border).
		BorderForeground(color).
		Render(body)
}

// Messages

type calendarTabsMsg struct {
	tabs []ledger.Tab
	err  error
}

func (m CalendarModel) loadTabsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tabs, err := m.ledgerService.ListTabs(ctx, m.userID)
		return calendarTabsMsg{tabs: tabs, err: err}
	}
}

type calendarYearMsg struct {
	summary *calendar.Year
	err     error
}

func (m CalendarModel) loadYearCmd() tea.Cmd {
	year, tab := m.year, m.tabKey()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.calendarService.Year(ctx, m.userID, year, tab)
		return calendarYearMsg{summary: summary, err: err}
	}
}
