package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	enc "github.com/MrJamesThe3rd/spendly/internal/encoding"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const (
	maxCSVBytes = 5 << 20
	sniffLines  = 5
)

// delimiters in order of preference when counts tie.
var delimiters = []rune{';', '\t', ','}

// CSVParser reads spending lists saved as CSV in any common encoding and
// with ';', ',' or tab separated columns.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(r io.Reader) ([]ledger.NewItem, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(utf8r, maxCSVBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(data) > maxCSVBytes {
		return nil, fmt.Errorf("%w: file larger than %d bytes", ledger.ErrInvalidInput, maxCSVBytes)
	}

	comma := sniffDelimiter(data)
	slog.Debug("parsing csv import", "charset", charset, "delimiter", string(comma))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %w", ledger.ErrInvalidInput, err)
	}

	return parseRows(rows)
}

// sniffDelimiter picks the separator that occurs most often in the first
// non-empty lines, ignoring quoted text.
func sniffDelimiter(data []byte) rune {
	counts := make(map[rune]int, len(delimiters))
	seen := 0

	for line := range bytes.Lines(data) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		quoted := false

		for _, c := range string(line) {
			if c == '"' {
				quoted = !quoted
				continue
			}

			if !quoted {
				counts[c]++
			}
		}

		seen++
		if seen == sniffLines {
			break
		}
	}

	best := delimiters[len(delimiters)-1]
	bestCount := 0

	for _, d := range delimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}

	return best
}
