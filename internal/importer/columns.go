package importer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

// headerSearchRows is how far down a file the header row may appear.
const headerSearchRows = 10

type column int

const (
	colName column = iota
	colAmount
	colNote
)

// aliases are compared after folding case and accents.
var aliases = map[string]column{
	"name":        colName,
	"nome":        colName,
	"item":        colName,
	"description": colName,
	"descricao":   colName,
	"despesa":     colName,
	"expense":     colName,
	"amount":      colAmount,
	"montante":    colAmount,
	"valor":       colAmount,
	"value":       colAmount,
	"price":       colAmount,
	"preco":       colAmount,
	"note":        colNote,
	"notes":       colNote,
	"nota":        colNote,
	"notas":       colNote,
	"comment":     colNote,
	"observacoes": colNote,
}

// layout maps the known columns to their position in a row.
type layout map[column]int

func (l layout) complete() bool {
	_, name := l[colName]
	_, amount := l[colAmount]

	return name && amount
}

// positional is used when the file has no header: name, amount, note.
var positional = layout{colName: 0, colAmount: 1, colNote: 2}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	return strings.ToLower(strings.TrimSpace(folded))
}

func headerLayout(row []string) layout {
	l := make(layout)

	for i, cell := range row {
		col, ok := aliases[fold(cell)]
		if !ok {
			continue
		}

		if _, seen := l[col]; !seen {
			l[col] = i
		}
	}

	return l
}

// detectLayout finds the header row. Without one, a first row whose second
// cell is an amount marks a headerless file. dataStart is the index of the
// first data row.
func detectLayout(rows [][]string) (layout, int, error) {
	for i, row := range rows[:min(len(rows), headerSearchRows)] {
		if l := headerLayout(row); l.complete() {
			return l, i + 1, nil
		}
	}

	for i, row := range rows {
		if blank(row) {
			continue
		}

		if len(row) >= 2 {
			if _, err := ledger.ParseAmount(row[1]); err == nil {
				return positional, i, nil
			}
		}

		break
	}

	return nil, 0, fmt.Errorf("%w: no name and amount columns found", ledger.ErrInvalidInput)
}

// parseRows turns spreadsheet rows into items. Line numbers in errors are 1-based.
func parseRows(rows [][]string) ([]ledger.NewItem, error) {
	l, start, err := detectLayout(rows)
	if err != nil {
		return nil, err
	}

	var items []ledger.NewItem

	for i, row := range rows[start:] {
		line := start + i + 1

		if blank(row) {
			continue
		}

		name := cell(row, l, colName)
		if name == "" {
			return nil, fmt.Errorf("line %d: %w: missing name", line, ledger.ErrInvalidInput)
		}

		amount, err := ledger.ParseAmount(cell(row, l, colAmount))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		items = append(items, ledger.NewItem{
			Name:   name,
			Amount: amount,
			Note:   cell(row, l, colNote),
		})

		if len(items) > maxItems {
			return nil, fmt.Errorf("%w: more than %d items", ledger.ErrInvalidInput, maxItems)
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items found", ledger.ErrInvalidInput)
	}

	return items, nil
}

func cell(row []string, l layout, col column) string {
	idx, ok := l[col]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
