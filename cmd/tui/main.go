package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendly/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/spendly/internal/app"
	"github.com/MrJamesThe3rd/spendly/internal/config"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type model struct {
	app    *app.App
	userID string

	currentView View
	// fromCalendar sends the month view back to the calendar it was opened from.
	fromCalendar bool

	calendarView view.CalendarModel
	monthView    view.MonthModel
	tabsView     view.TabsModel
	importView   view.ImportModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewCalendar View = 1
	ViewMonth    View = 2
	ViewTabs     View = 3
	ViewImport   View = 4
	ViewExport   View = 5
)

func initialModel(a *app.App, userID string) model {
	return model{
		app:         a,
		userID:      userID,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCalendar
				m.calendarView = view.NewCalendarModel(m.app.Calendar, m.app.Ledgers, m.userID)

				return m, m.calendarView.Init()
			case "2":
				m.fromCalendar = false
				now := time.Now()
				return m.openMonth(view.OpenMonthMsg{Year: now.Year(), Month: int(now.Month()), Tab: ledger.TabMain})
			case "3":
				m.currentView = ViewTabs
				m.tabsView = view.NewTabsModel(m.app.Ledgers, m.userID)

				return m, m.tabsView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.app.Ledgers, m.app.Importer, m.userID)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Exporter, m.app.Ledgers, m.userID)

				return m, m.exportView.Init()
			}
		}
	case view.OpenMonthMsg:
		m.fromCalendar = m.currentView == ViewCalendar
		return m.openMonth(msg)
	case view.BackMsg:
		if m.currentView == ViewMonth && m.fromCalendar {
			m.currentView = ViewCalendar
			m.fromCalendar = false

			return m, m.calendarView.Init()
		}

		m.currentView = ViewMenu

		return m, nil
	}

	switch m.currentView {
	case ViewCalendar:
		var newModel tea.Model
		newModel, cmd = m.calendarView.Update(msg)
		m.calendarView = newModel.(view.CalendarModel)
	case ViewMonth:
		var newModel tea.Model
		newModel, cmd = m.monthView.Update(msg)
		m.monthView = newModel.(view.MonthModel)
	case ViewTabs:
		var newModel tea.Model
		newModel, cmd = m.tabsView.Update(msg)
		m.tabsView = newModel.(view.TabsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) openMonth(msg view.OpenMonthMsg) (tea.Model, tea.Cmd) {
	key := ledger.Key{UserID: m.userID, Year: msg.Year, Month: msg.Month, Tab: msg.Tab}

	m.currentView = ViewMonth
	m.monthView = view.NewMonthModel(m.app.Ledgers, key)

	return m, m.monthView.Init()
}

func (m model) View() string {
	var screen view.Screen

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Spendly\n\n" +
				"1. Calendar\n" +
				"2. This Month\n" +
				"3. Manage Tabs\n" +
				"4. Import Items\n" +
				"5. Export Workbook\n\n" +
				"q. Quit",
		)
	case ViewCalendar:
		screen = m.calendarView
	case ViewMonth:
		screen = m.monthView
	case ViewTabs:
		screen = m.tabsView
	case ViewImport:
		screen = m.importView
	case ViewExport:
		screen = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(screen.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(screen.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, screen.View(), help)
}

func main() {
	if err := run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to bubbletea, so logs go to a file when asked for.
	logOut := io.Discard
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "spendly")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()

		logOut = f
	}

	slog.SetDefault(cfg.Logger(logOut))

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a, cfg.Auth.LocalUser))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}

	return nil
}
