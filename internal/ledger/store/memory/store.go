// Package memory keeps ledgers and tabs in process memory. It backs tests,
// the "memory" store backend and local sessions.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	ledgers map[ledger.Key]ledger.Ledger
	tabs    map[string]map[string]ledger.Tab
	engine  *ledger.Engine
	now     func() time.Time
}

func New() *Store {
	return &Store{
		ledgers: make(map[ledger.Key]ledger.Ledger),
		tabs:    make(map[string]map[string]ledger.Tab),
		engine:  ledger.NewEngine(),
		now:     time.Now,
	}
}

func (s *Store) GetLedger(_ context.Context, key ledger.Key) (*ledger.Ledger, error) {
	key = key.WithDefaultTab()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[key]
	if !ok {
		return nil, fmt.Errorf("ledger %s: %w", key, ledger.ErrNotFound)
	}

	return copyLedger(l), nil
}

func (s *Store) PutLedger(_ context.Context, l *ledger.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(l)
}

// put must be called with mu held.
func (s *Store) put(l *ledger.Ledger) error {
	l.Key = l.Key.WithDefaultTab()

	stored, ok := s.ledgers[l.Key]

	var storedVersion int64
	if ok {
		storedVersion = stored.Version
	}

	if storedVersion != l.Version {
		return fmt.Errorf("ledger %s at version %d: %w", l.Key, l.Version, ledger.ErrVersionConflict)
	}

	now := s.now().UTC()

	l.Version++
	l.UpdatedAt = now

	if ok {
		l.CreatedAt = stored.CreatedAt
	} else {
		l.CreatedAt = now
	}

	s.ledgers[l.Key] = *copyLedger(*l)

	return nil
}

func (s *Store) PatchItem(_ context.Context, key ledger.Key, itemID string, patch ledger.ItemPatch) (*ledger.Ledger, error) {
	key = key.WithDefaultTab()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.ledgers[key]
	if !ok {
		return nil, fmt.Errorf("ledger %s: %w", key, ledger.ErrNotFound)
	}

	l := ledger.Normalize(current)

	if _, ok := l.Item(itemID); !ok && patch.Delete {
		return &l, nil
	}

	next, err := s.engine.ApplyPatch(l, itemID, patch)
	if err != nil {
		return nil, err
	}

	if err := s.put(&next); err != nil {
		return nil, err
	}

	return copyLedger(next), nil
}

func (s *Store) ListLedgers(_ context.Context, userID string, year int, tab string) ([]*ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ledger.Ledger

	for key, l := range s.ledgers {
		if key.UserID != userID || key.Year != year {
			continue
		}

		if tab != "" && key.Tab != tab {
			continue
		}

		out = append(out, copyLedger(l))
	}

	slices.SortFunc(out, func(a, b *ledger.Ledger) int {
		return cmp.Or(cmp.Compare(a.Key.Tab, b.Key.Tab), cmp.Compare(a.Key.Month, b.Key.Month))
	})

	return out, nil
}

func (s *Store) ListTabs(_ context.Context, userID string) ([]ledger.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs := make([]ledger.Tab, 0, len(s.tabs[userID]))
	for _, t := range s.tabs[userID] {
		tabs = append(tabs, t)
	}

	slices.SortFunc(tabs, func(a, b ledger.Tab) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.Key, b.Key))
	})

	return tabs, nil
}

func (s *Store) SaveTab(_ context.Context, userID string, tab ledger.Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tabs[userID] == nil {
		s.tabs[userID] = make(map[string]ledger.Tab)
	}

	s.tabs[userID][tab.Key] = tab

	return nil
}

// DeleteTab removes the tab and every ledger filed under it.
func (s *Store) DeleteTab(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tabs[userID][key]; !ok {
		return fmt.Errorf("tab %q: %w", key, ledger.ErrNotFound)
	}

	delete(s.tabs[userID], key)

	for k := range s.ledgers {
		if k.UserID == userID && k.Tab == key {
			delete(s.ledgers, k)
		}
	}

	return nil
}

func copyLedger(l ledger.Ledger) *ledger.Ledger {
	l.Items = slices.Clone(l.Items)
	if l.Items == nil {
		l.Items = []ledger.Item{}
	}

	return &l
}
