package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "12.34", want: "12.34"},
		{input: "12,34", want: "12.34"},
		{input: "1.234,56", want: "1234.56"},
		{input: "1,234.56", want: "1234.56"},
		{input: " 7 ", want: "7"},
		{input: "€ 9,90", want: "9.90"},
		{input: "15€", want: "15"},
		{input: "1 000,00", want: "1000"},
		{input: "0", want: "0"},
		{input: "", wantErr: true},
		{input: "€", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "-3", wantErr: true},
		{input: "1,2,3", wantErr: true},
		{input: "1e9", wantErr: true},
		{input: "1e20000000", wantErr: true},
		{input: "1E-3", wantErr: true},
		{input: "NaN", wantErr: true},
		{input: "1234567890123456", wantErr: true},
		{input: "0.123456789", wantErr: true},
		{input: "999999999999999.99", want: "999999999999999.99"},
		{input: ",5", want: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ledger.ParseAmount(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidInput)
				return
			}

			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseSignedAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "-5", want: "-5"},
		{input: "-1.234,50", want: "-1234.5"},
		{input: "0", want: "0"},
		{input: "-1e9", wantErr: true},
		{input: "-", wantErr: true},
		{input: "--5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ledger.ParseSignedAmount(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidInput)
				return
			}

			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}
