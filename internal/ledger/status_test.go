package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

func TestDeriveStatus(t *testing.T) {
	item := func(amount, paid string, flag bool) ledger.Item {
		return ledger.Item{Amount: dec(amount), AmountPaid: dec(paid), Paid: flag}
	}

	tests := []struct {
		name  string
		items []ledger.Item
		want  ledger.Status
	}{
		{name: "Empty", want: ledger.StatusUnpaid},
		{name: "Untouched", items: []ledger.Item{item("10", "0", false)}, want: ledger.StatusUnpaid},
		{name: "AllSettled", items: []ledger.Item{item("10", "10", true), item("5", "5", true)}, want: ledger.StatusPaid},
		{name: "OnePartial", items: []ledger.Item{item("10", "10", true), item("5", "2", false)}, want: ledger.StatusPartial},
		{name: "PartialWinsOverUntouched", items: []ledger.Item{item("10", "0", false), item("5", "2", false)}, want: ledger.StatusPartial},
		{name: "SettledAndUntouched", items: []ledger.Item{item("10", "10", true), item("5", "0", false)}, want: ledger.StatusUnpaid},
		{name: "OverpaidCountsAsSettled", items: []ledger.Item{item("10", "12", true)}, want: ledger.StatusPaid},
		{name: "ZeroAmountFlagged", items: []ledger.Item{item("0", "0", true)}, want: ledger.StatusPaid},
		{name: "ZeroAmountUnflagged", items: []ledger.Item{item("0", "0", false)}, want: ledger.StatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.DeriveStatus(tt.items))
		})
	}
}

func TestNormalize(t *testing.T) {
	stored := ledger.Ledger{
		Key: ledger.Key{UserID: "u1", Year: 2024, Month: 12},
		Items: []ledger.Item{
			{ID: "a", Name: "Rent", Amount: dec("30"), AmountPaid: dec("30"), Paid: false},
			{ID: "b", Name: "Gym", Amount: dec("20"), AmountPaid: dec("0"), Paid: true},
		},
		Status:  ledger.StatusPaid,
		Version: 4,
	}

	got := ledger.Normalize(stored)

	require.Len(t, got.Items, 2)
	assert.True(t, got.Items[0].Paid)
	assert.False(t, got.Items[1].Paid)
	assert.True(t, dec("50").Equal(got.Total))
	assert.True(t, dec("30").Equal(got.PaidTotal))
	assert.Equal(t, ledger.StatusPartial, got.Status)
	assert.Equal(t, ledger.TabMain, got.Key.Tab)
	assert.Equal(t, int64(4), got.Version)

	assert.False(t, stored.Items[0].Paid, "input must not be modified")
}

func TestLedger_Totals(t *testing.T) {
	l := ledger.Ledger{Items: []ledger.Item{
		{Amount: dec("30"), AmountPaid: dec("30"), Paid: true},
		{Amount: dec("20"), AmountPaid: dec("5")},
		{Amount: dec("10"), AmountPaid: dec("15")},
	}}

	assert.True(t, dec("10").Equal(l.UnpaidTotal()))
	assert.True(t, dec("15").Equal(l.Outstanding()))
}

func TestKey_Validate(t *testing.T) {
	tests := []struct {
		name    string
		key     ledger.Key
		wantErr bool
	}{
		{name: "Valid", key: ledger.Key{UserID: "u", Year: 2025, Month: 1}},
		{name: "NoUser", key: ledger.Key{Year: 2025, Month: 1}, wantErr: true},
		{name: "MonthZero", key: ledger.Key{UserID: "u", Year: 2025, Month: 0}, wantErr: true},
		{name: "MonthThirteen", key: ledger.Key{UserID: "u", Year: 2025, Month: 13}, wantErr: true},
		{name: "YearTooSmall", key: ledger.Key{UserID: "u", Year: 1969, Month: 5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()

			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidInput)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestKey_Format(t *testing.T) {
	k := ledger.Key{UserID: "u1", Year: 2025, Month: 3}

	assert.Equal(t, "2025-03", k.DocumentID())
	assert.Equal(t, "u1/main/2025-03", k.String())
	assert.Equal(t, "main", k.WithDefaultTab().Tab)
}
