package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type Store struct {
	db     *sql.DB
	engine *ledger.Engine
}

func New(db *sql.DB) *Store {
	return &Store{db: db, engine: ledger.NewEngine()}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// itemRecord is the JSONB shape of an item.
type itemRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Paid       bool            `json:"paid"`
	Note       string          `json:"note,omitempty"`
}

func encodeItems(items []ledger.Item) ([]byte, error) {
	records := make([]itemRecord, len(items))
	for i, it := range items {
		records[i] = itemRecord(it)
	}

	return json.Marshal(records)
}

func decodeItems(raw []byte) ([]ledger.Item, error) {
	var records []itemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	items := make([]ledger.Item, len(records))
	for i, r := range records {
		items[i] = ledger.Item(r)
	}

	return items, nil
}

// scanLedger reads a ledger row.
// Expected column order: user_id, year, month, tab, items, total, paid_total, status, version, created_at, updated_at
func scanLedger(s scanner) (*ledger.Ledger, error) {
	var l ledger.Ledger

	var status string

	var rawItems []byte

	if err := s.Scan(
		&l.Key.UserID, &l.Key.Year, &l.Key.Month, &l.Key.Tab,
		&rawItems, &l.Total, &l.PaidTotal, &status,
		&l.Version, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	items, err := decodeItems(rawItems)
	if err != nil {
		return nil, fmt.Errorf("decoding items of %s: %w", l.Key, err)
	}

	l.Items = items
	l.Status = ledger.Status(status)

	return &l, nil
}

const selectLedgerColumns = `
	user_id, year, month, tab, items, total, paid_total, status, version, created_at, updated_at
`

func (s *Store) GetLedger(ctx context.Context, key ledger.Key) (*ledger.Ledger, error) {
	key = key.WithDefaultTab()

	query := `SELECT ` + selectLedgerColumns + `
		FROM ledgers
		WHERE user_id = $1 AND year = $2 AND month = $3 AND tab = $4`

	l, err := scanLedger(s.db.QueryRowContext(ctx, query, key.UserID, key.Year, key.Month, key.Tab))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger %s: %w", key, ledger.ErrNotFound)
		}

		return nil, fmt.Errorf("getting ledger: %w", err)
	}

	return l, nil
}

// PutLedger stores l if the stored version still equals l.Version, then
// advances l.Version. Version 0 inserts and fails if the row already exists.
func (s *Store) PutLedger(ctx context.Context, l *ledger.Ledger) error {
	return putLedger(ctx, s.db, l)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func putLedger(ctx context.Context, db execer, l *ledger.Ledger) error {
	l.Key = l.Key.WithDefaultTab()

	items, err := encodeItems(l.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	var row *sql.Row

	if l.Version == 0 {
		row = db.QueryRowContext(ctx, `
			INSERT INTO ledgers (user_id, year, month, tab, items, total, paid_total, status, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW())
			ON CONFLICT (user_id, year, month, tab) DO NOTHING
			RETURNING version, created_at, updated_at`,
			l.Key.UserID, l.Key.Year, l.Key.Month, l.Key.Tab,
			items, l.Total, l.PaidTotal, string(l.Status),
		)
	} else {
		row = db.QueryRowContext(ctx, `
			UPDATE ledgers
			SET items = $1, total = $2, paid_total = $3, status = $4, version = version + 1, updated_at = NOW()
			WHERE user_id = $5 AND year = $6 AND month = $7 AND tab = $8 AND version = $9
			RETURNING version, created_at, updated_at`,
			items, l.Total, l.PaidTotal, string(l.Status),
			l.Key.UserID, l.Key.Year, l.Key.Month, l.Key.Tab, l.Version,
		)
	}

	err = row.Scan(&l.Version, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ledger %s at version %d: %w", l.Key, l.Version, ledger.ErrVersionConflict)
	}

	if err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	return nil
}

// PatchItem locks the ledger row, applies the patch and writes the result
// in one transaction.
func (s *Store) PatchItem(ctx context.Context, key ledger.Key, itemID string, patch ledger.ItemPatch) (*ledger.Ledger, error) {
	key = key.WithDefaultTab()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + selectLedgerColumns + `
		FROM ledgers
		WHERE user_id = $1 AND year = $2 AND month = $3 AND tab = $4
		FOR UPDATE`

	current, err := scanLedger(tx.QueryRowContext(ctx, query, key.UserID, key.Year, key.Month, key.Tab))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger %s: %w", key, ledger.ErrNotFound)
		}

		return nil, fmt.Errorf("locking ledger: %w", err)
	}

	l := ledger.Normalize(*current)

	if _, ok := l.Item(itemID); !ok && patch.Delete {
		return &l, nil
	}

	next, err := s.engine.ApplyPatch(l, itemID, patch)
	if err != nil {
		return nil, err
	}

	if err := putLedger(ctx, tx, &next); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing patch: %w", err)
	}

	return &next, nil
}

// ListLedgers returns the stored months of a year. An empty tab lists every tab.
func (s *Store) ListLedgers(ctx context.Context, userID string, year int, tab string) ([]*ledger.Ledger, error) {
	query := `SELECT ` + selectLedgerColumns + `
		FROM ledgers
		WHERE user_id = $1 AND year = $2`

	args := []any{userID, year}

	if tab != "" {
		query += " AND tab = $3"

		args = append(args, tab)
	}

	query += " ORDER BY tab ASC, month ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*ledger.Ledger

	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger: %w", err)
		}

		ledgers = append(ledgers, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledgers: %w", err)
	}

	return ledgers, nil
}

func (s *Store) ListTabs(ctx context.Context, userID string) ([]ledger.Tab, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, label, position
		FROM tabs
		WHERE user_id = $1
		ORDER BY position ASC, key ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	defer rows.Close()

	var tabs []ledger.Tab

	for rows.Next() {
		var t ledger.Tab
		if err := rows.Scan(&t.Key, &t.Label, &t.Position); err != nil {
			return nil, fmt.Errorf("scanning tab: %w", err)
		}

		tabs = append(tabs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tabs: %w", err)
	}

	return tabs, nil
}

func (s *Store) SaveTab(ctx context.Context, userID string, tab ledger.Tab) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tabs (user_id, key, label, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, key) DO UPDATE
		SET label = EXCLUDED.label, position = EXCLUDED.position, updated_at = NOW()`,
		userID, tab.Key, tab.Label, tab.Position,
	)
	if err != nil {
		return fmt.Errorf("saving tab: %w", err)
	}

	return nil
}

// DeleteTab removes the tab and every ledger filed under it.
func (s *Store) DeleteTab(ctx context.Context, userID, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM tabs WHERE user_id = $1 AND key = $2`, userID, key)
	if err != nil {
		return fmt.Errorf("deleting tab: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted tab: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("tab %q: %w", key, ledger.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledgers WHERE user_id = $1 AND tab = $2`, userID, key); err != nil {
		return fmt.Errorf("deleting tab ledgers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tab delete: %w", err)
	}

	return nil
}
