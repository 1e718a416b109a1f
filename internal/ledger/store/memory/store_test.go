package memory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
	"github.com/MrJamesThe3rd/spendly/internal/ledger/store/memory"
)

var key = ledger.Key{UserID: "u1", Year: 2025, Month: 6, Tab: ledger.TabMain}

func TestStore_PutLedger_Versioning(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	l := ledger.New(key)
	require.NoError(t, s.PutLedger(ctx, &l))
	assert.Equal(t, int64(1), l.Version)
	assert.False(t, l.CreatedAt.IsZero())

	stale := ledger.New(key)
	assert.ErrorIs(t, s.PutLedger(ctx, &stale), ledger.ErrVersionConflict)

	got, err := s.GetLedger(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	require.NoError(t, s.PutLedger(ctx, got))
	assert.Equal(t, int64(2), got.Version)

	assert.ErrorIs(t, s.PutLedger(ctx, &l), ledger.ErrVersionConflict)
}

func TestStore_GetLedger_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	l := ledger.New(key)
	l.Items = []ledger.Item{{ID: "a", Name: "Rent", Amount: decimal.NewFromInt(10)}}
	require.NoError(t, s.PutLedger(ctx, &l))

	got, err := s.GetLedger(ctx, key)
	require.NoError(t, err)

	got.Items[0].Name = "changed"

	again, err := s.GetLedger(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Rent", again.Items[0].Name)

	_, err = s.GetLedger(ctx, ledger.Key{UserID: "u1", Year: 2025, Month: 7})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestStore_PatchItem(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.PatchItem(ctx, key, "a", ledger.ItemPatch{Paid: new(true)})
	require.ErrorIs(t, err, ledger.ErrNotFound)

	l := ledger.New(key)
	l.Items = []ledger.Item{{ID: "a", Name: "Rent", Amount: decimal.NewFromInt(10)}}
	require.NoError(t, s.PutLedger(ctx, &l))

	got, err := s.PatchItem(ctx, key, "a", ledger.ItemPatch{Paid: new(true)})
	require.NoError(t, err)
	assert.True(t, got.Items[0].Paid)
	assert.Equal(t, ledger.StatusPaid, got.Status)
	assert.Equal(t, int64(2), got.Version)

	unchanged, err := s.PatchItem(ctx, key, "missing", ledger.ItemPatch{Delete: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), unchanged.Version)

	_, err = s.PatchItem(ctx, key, "missing", ledger.ItemPatch{Note: new("x")})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestStore_Tabs(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.SaveTab(ctx, "u1", ledger.Tab{Key: "b", Label: "B", Position: 2}))
	require.NoError(t, s.SaveTab(ctx, "u1", ledger.Tab{Key: "a", Label: "A", Position: 1}))
	require.NoError(t, s.SaveTab(ctx, "u2", ledger.Tab{Key: "c", Label: "C", Position: 1}))

	tabs, err := s.ListTabs(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tabs, 2)
	assert.Equal(t, "a", tabs[0].Key)

	inTab := ledger.New(ledger.Key{UserID: "u1", Year: 2025, Month: 1, Tab: "a"})
	require.NoError(t, s.PutLedger(ctx, &inTab))

	inMain := ledger.New(ledger.Key{UserID: "u1", Year: 2025, Month: 1})
	require.NoError(t, s.PutLedger(ctx, &inMain))

	require.NoError(t, s.DeleteTab(ctx, "u1", "a"))
	assert.ErrorIs(t, s.DeleteTab(ctx, "u1", "a"), ledger.ErrNotFound)

	all, err := s.ListLedgers(ctx, "u1", 2025, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ledger.TabMain, all[0].Key.Tab)
}

func TestStore_ListLedgers(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	for _, k := range []ledger.Key{
		{UserID: "u1", Year: 2025, Month: 9},
		{UserID: "u1", Year: 2025, Month: 2},
		{UserID: "u1", Year: 2025, Month: 2, Tab: "work"},
		{UserID: "u1", Year: 2024, Month: 2},
		{UserID: "u2", Year: 2025, Month: 2},
	} {
		l := ledger.New(k)
		require.NoError(t, s.PutLedger(ctx, &l))
	}

	mainOnly, err := s.ListLedgers(ctx, "u1", 2025, ledger.TabMain)
	require.NoError(t, err)
	require.Len(t, mainOnly, 2)
	assert.Equal(t, 2, mainOnly[0].Key.Month)
	assert.Equal(t, 9, mainOnly[1].Key.Month)

	all, err := s.ListLedgers(ctx, "u1", 2025, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_ConcurrentServiceWrites(t *testing.T) {
	const writers = 20

	ctx := context.Background()
	svc := ledger.NewService(memory.New(), ledger.WithConflictRetries(writers))

	var g errgroup.Group

	for i := range writers {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, key, fmt.Sprintf("item %d", i), decimal.NewFromInt(int64(i+1)))
			return err
		})
	}

	require.NoError(t, g.Wait())

	got, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got.Items, writers)
	assert.True(t, decimal.NewFromInt(writers*(writers+1)/2).Equal(got.Total))
	assert.Equal(t, int64(writers), got.Version)
}
