package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const (
	summarySheet = "Summary"
	// numFmtMoney is excelize's built-in "#,##0.00".
	numFmtMoney = 4
)

var (
	summaryHeader = []any{"Month", "Status", "Items", "Total", "Paid", "Outstanding"}
	monthHeader   = []any{"Tab", "Name", "Amount", "Amount paid", "Remaining", "Paid", "Note"}
)

type LedgerLister interface {
	ListLedgers(ctx context.Context, userID string, year int, tab string) ([]*ledger.Ledger, error)
}

// Service builds yearly spreadsheets of a user's ledgers.
type Service struct {
	calendar *calendar.Service
	ledgers  LedgerLister
}

func NewService(cal *calendar.Service, ledgers LedgerLister) *Service {
	return &Service{calendar: cal, ledgers: ledgers}
}

// Workbook returns a workbook with a Summary sheet and one sheet per stored
// month of year. An empty tab exports every tab.
func (s *Service) Workbook(ctx context.Context, userID string, year int, tab string) (*excelize.File, error) {
	summary, err := s.calendar.Year(ctx, userID, year, tab)
	if err != nil {
		return nil, fmt.Errorf("building summary: %w", err)
	}

	ledgers, err := s.ledgers.ListLedgers(ctx, userID, year, tab)
	if err != nil {
		return nil, fmt.Errorf("listing ledgers: %w", err)
	}

	f := excelize.NewFile()

	if err := s.fill(f, summary, ledgers); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// Write streams the workbook for year to w.
func (s *Service) Write(ctx context.Context, w io.Writer, userID string, year int, tab string) error {
	f, err := s.Workbook(ctx, userID, year, tab)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

// Filename is the suggested download name, e.g. "spendly_2025.xlsx" or "spendly_2025_work.xlsx".
func Filename(year int, tab string) string {
	if tab == "" {
		return fmt.Sprintf("spendly_%d.xlsx", year)
	}

	return fmt.Sprintf("spendly_%d_%s.xlsx", year, tab)
}

func (s *Service) fill(f *excelize.File, summary *calendar.Year, ledgers []*ledger.Ledger) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	if err := writeSummary(f, summary, bold, money); err != nil {
		return err
	}

	byMonth := make(map[int][]*ledger.Ledger)
	for _, l := range ledgers {
		byMonth[l.Key.Month] = append(byMonth[l.Key.Month], l)
	}

	for m := 1; m <= 12; m++ {
		if len(byMonth[m]) == 0 {
			continue
		}

		if err := writeMonth(f, summary.Year, m, byMonth[m], bold, money); err != nil {
			return err
		}
	}

	return nil
}

func writeSummary(f *excelize.File, y *calendar.Year, bold, money int) error {
	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}

	for i, m := range y.Months {
		row := []any{
			time.Month(m.Month).String(),
			string(m.Status),
			m.Items,
			m.Total.InexactFloat64(),
			m.PaidTotal.InexactFloat64(),
			m.Outstanding.InexactFloat64(),
		}

		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}

	totalRow := len(y.Months) + 2
	if err := writeRow(f, summarySheet, totalRow, []any{
		"Total", "", "",
		y.Total.InexactFloat64(), y.PaidTotal.InexactFloat64(), y.Outstanding.InexactFloat64(),
	}); err != nil {
		return err
	}

	return styleSheet(f, summarySheet, len(summaryHeader), totalRow, "D", "F", bold, money)
}

func writeMonth(f *excelize.File, year, month int, ledgers []*ledger.Ledger, bold, money int) error {
	sheet := ledger.Key{Year: year, Month: month}.DocumentID()

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, monthHeader); err != nil {
		return err
	}

	row := 2

	for _, l := range ledgers {
		for _, it := range l.Items {
			paid := "No"
			if it.Paid {
				paid = "Yes"
			}

			err := writeRow(f, sheet, row, []any{
				l.Key.Tab,
				it.Name,
				it.Amount.InexactFloat64(),
				it.AmountPaid.InexactFloat64(),
				it.Remaining().InexactFloat64(),
				paid,
				it.Note,
			})
			if err != nil {
				return err
			}

			row++
		}
	}

	return styleSheet(f, sheet, len(monthHeader), row-1, "C", "E", bold, money)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
	}

	return nil
}

func styleSheet(f *excelize.File, sheet string, cols, lastRow int, moneyFrom, moneyTo string, bold, money int) error {
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	if lastRow >= 2 {
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", moneyFrom), fmt.Sprintf("%s%d", moneyTo, lastRow), money); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", lastCol, 14); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	return nil
}
