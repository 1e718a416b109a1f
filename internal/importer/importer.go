package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// maxItems bounds a single import so one upload cannot grow a ledger without limit.
const maxItems = 500

var ErrUnsupportedFormat = errors.New("unsupported import format")

type Importer interface {
	Parse(r io.Reader) ([]ledger.NewItem, error)
}
