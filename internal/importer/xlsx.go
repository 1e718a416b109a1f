package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

// XLSXParser reads the first worksheet that contains a spending list.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(r io.Reader) ([]ledger.NewItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ledger.ErrInvalidInput, err)
	}
	defer f.Close()

	var firstErr error

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		items, err := parseRows(rows)
		if err == nil {
			return items, nil
		}

		if firstErr == nil {
			firstErr = fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}

	if firstErr == nil {
		firstErr = fmt.Errorf("%w: workbook has no sheets", ledger.ErrInvalidInput)
	}

	return nil, firstErr
}
