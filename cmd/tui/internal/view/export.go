package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type exportOptions struct {
	year int
	tab  string
	path string
}

type ExportModel struct {
	CommonModel
	exportService *export.Service
	ledgerService *ledger.Service
	userID        string

	state   exportState
	err     error
	form    *huh.Form
	options *exportOptions
	spinner spinner.Model
	summary string
}

func NewExportModel(svc *export.Service, ledgers *ledger.Service, userID string) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		exportService: svc,
		ledgerService: ledgers,
		userID:        userID,
		state:         exportStateForm,
		options:       &exportOptions{year: time.Now().Year(), path: "./exports"},
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Workbook" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.loadTabsCmd()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tabsMsg, ok := msg.(exportTabsMsg); ok {
		if tabsMsg.err != nil {
			m.state = exportStateResult
			m.err = tabsMsg.err

			return m, nil
		}

		m.form = m.buildForm(tabsMsg.tabs)

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

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

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(*m.options))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.summary = result.body

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) buildForm(tabs []ledger.Tab) *huh.Form {
	years := calendar.YearOptions(time.Now())
	yearOpts := make([]huh.Option[int], 0, len(years))

	for _, y := range years {
		yearOpts = append(yearOpts, huh.NewOption(strconv.Itoa(y), y))
	}

	tabOpts := []huh.Option[string]{huh.NewOption("All tabs", "")}
	for _, t := range tabs {
		tabOpts = append(tabOpts, huh.NewOption(t.Label, t.Key))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().Title("Year").Options(yearOpts...).Value(&m.options.year),
			huh.NewSelect[string]().Title("Tab").Options(tabOpts...).Value(&m.options.tab),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&m.options.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		if m.form == nil {
			return lipgloss.NewStyle().Padding(1).Render("Loading...")
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Building workbook...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPaid).
		Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", m.summary),
	)
}

// Messages

type exportTabsMsg struct {
	tabs []ledger.Tab
	err  error
}

type exportResultMsg struct {
	body string
	err  error
}

func (m ExportModel) loadTabsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tabs, err := m.ledgerService.ListTabs(ctx, m.userID)
		return exportTabsMsg{tabs: tabs, err: err}
	}
}

func (m ExportModel) runExportCmd(opts exportOptions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := os.MkdirAll(opts.path, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("create output directory: %w", err)}
		}

		path := filepath.Join(opts.path, export.Filename(opts.year, opts.tab))

		f, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: fmt.Errorf("create %s: %w", path, err)}
		}
		defer f.Close()

		if err := m.exportService.Write(ctx, f, m.userID, opts.year, opts.tab); err != nil {
			_ = os.Remove(path)
			return exportResultMsg{err: err}
		}

		return exportResultMsg{body: fmt.Sprintf("Wrote %s", path)}
	}
}
