package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetLedger(ctx context.Context, key Key) (*Ledger, error)
	PutLedger(ctx context.Context, l *Ledger) error
	PatchItem(ctx context.Context, key Key, itemID string, patch ItemPatch) (*Ledger, error)
	ListLedgers(ctx context.Context, userID string, year int, tab string) ([]*Ledger, error)

	ListTabs(ctx context.Context, userID string) ([]Tab, error)
	SaveTab(ctx context.Context, userID string, tab Tab) error
	DeleteTab(ctx context.Context, userID, key string) error
}

const defaultConflictRetries = 3

var tabKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

var errUnknownTab = fmt.Errorf("unknown tab: %w", ErrNotFound)

var outcomeClasses = map[error]string{
	ErrInvalidInput:    "invalid_input",
	ErrInvalidAmount:   "invalid_amount",
	ErrNotFound:        "not_found",
	ErrVersionConflict: "conflict",
	ErrProtectedTab:    "protected",
}

type Service struct {
	repo      Repository
	engine    *Engine
	publisher Publisher
	retries   int
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithEngine(e *Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithConflictRetries bounds how often a write is re-applied after a version conflict.
func WithConflictRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retries = n
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		engine:    NewEngine(),
		publisher: NopPublisher{},
		retries:   defaultConflictRetries,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the ledger for key. A ledger that was never stored comes back
// empty with Version 0.
func (s *Service) Get(ctx context.Context, key Key) (*Ledger, error) {
	key = key.WithDefaultTab()
	if err := validateKey(key); err != nil {
		return nil, err
	}

	l, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (s *Service) AddItem(ctx context.Context, key Key, name string, amount decimal.Decimal) (*Ledger, error) {
	return s.update(ctx, "add_item", key, func(l Ledger) (Ledger, error) {
		return s.engine.AddItem(l, name, amount)
	})
}

// ImportItems adds every item in a single write.
func (s *Service) ImportItems(ctx context.Context, key Key, items []NewItem) (*Ledger, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: nothing to import", ErrInvalidInput)
	}

	return s.update(ctx, "import_items", key, func(l Ledger) (Ledger, error) {
		return s.engine.AddItems(l, items)
	})
}

func (s *Service) AllocateToItem(ctx context.Context, key Key, id string, amount decimal.Decimal) (*Ledger, error) {
	return s.update(ctx, "allocate_item", key, func(l Ledger) (Ledger, error) {
		return s.engine.AllocateToItem(l, id, amount)
	})
}

func (s *Service) AllocateAcrossUnpaid(ctx context.Context, key Key, amount decimal.Decimal) (*Ledger, error) {
	return s.update(ctx, "allocate_unpaid", key, func(l Ledger) (Ledger, error) {
		return s.engine.AllocateAcrossUnpaid(l, amount)
	})
}

func (s *Service) MarkAllFullyPaid(ctx context.Context, key Key) (*Ledger, error) {
	return s.update(ctx, "mark_all_paid", key, func(l Ledger) (Ledger, error) {
		return s.engine.MarkAllFullyPaid(l), nil
	})
}

// EditItem renames an item, changes its amount or both. A nil field keeps
// whatever value the stored item has when the patch is applied.
func (s *Service) EditItem(ctx context.Context, key Key, id string, name *string, amount *decimal.Decimal) (*Ledger, error) {
	l, err := s.patch(ctx, "edit_item", key, id, ItemPatch{Name: name, Amount: amount})
	if err != nil {
		return nil, err
	}

	if it, ok := l.Item(id); ok && it.Overpaid() {
		slog.WarnContext(ctx, "item amount is below what was already paid",
			"ledger", l.Key.String(), "item", id,
			"amount", it.Amount.String(), "amount_paid", it.AmountPaid.String())
	}

	return l, nil
}

// DeleteItem removes an item; deleting from a ledger that does not exist is a no-op.
func (s *Service) DeleteItem(ctx context.Context, key Key, id string) (*Ledger, error) {
	l, err := s.patch(ctx, "delete_item", key, id, ItemPatch{Delete: true})
	if errors.Is(err, ErrNotFound) && !errors.Is(err, errUnknownTab) {
		return s.Get(ctx, key)
	}

	return l, err
}

func (s *Service) MarkFullyPaid(ctx context.Context, key Key, id string) (*Ledger, error) {
	return s.patch(ctx, "mark_paid", key, id, ItemPatch{Paid: new(true)})
}

func (s *Service) UndoPaid(ctx context.Context, key Key, id string) (*Ledger, error) {
	return s.patch(ctx, "undo_paid", key, id, ItemPatch{Paid: new(false)})
}

func (s *Service) SetNote(ctx context.Context, key Key, id, text string) (*Ledger, error) {
	return s.patch(ctx, "set_note", key, id, ItemPatch{Note: &text})
}

// ListTabs returns the user's tabs ordered by position, main first.
func (s *Service) ListTabs(ctx context.Context, userID string) ([]Tab, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}

	tabs, err := s.repo.ListTabs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}

	if !slices.ContainsFunc(tabs, func(t Tab) bool { return t.Key == TabMain }) {
		tabs = append(tabs, Tab{Key: TabMain, Label: "Main", Position: 0})
	}

	slices.SortStableFunc(tabs, func(a, b Tab) int {
		if a.Key == TabMain || b.Key == TabMain {
			return boolOrder(a.Key != TabMain, b.Key != TabMain)
		}

		return a.Position - b.Position
	})

	return tabs, nil
}

// CreateTab adds a tab. An empty label becomes "Tab N".
func (s *Service) CreateTab(ctx context.Context, userID, label string) (*Tab, error) {
	tabs, err := s.ListTabs(ctx, userID)
	if err != nil {
		return nil, err
	}

	label = strings.TrimSpace(label)
	if label == "" {
		label = fmt.Sprintf("Tab %d", len(tabs)+1)
	}

	if utf8.RuneCountInString(label) > maxNameLength {
		return nil, fmt.Errorf("%w: label longer than %d characters", ErrInvalidInput, maxNameLength)
	}

	pos := 0
	for _, t := range tabs {
		pos = max(pos, t.Position)
	}

	tab := Tab{
		Key:      "tab-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		Label:    label,
		Position: pos + 1,
	}

	err = s.repo.SaveTab(ctx, userID, tab)
	observe("create_tab", err)

	if err != nil {
		return nil, fmt.Errorf("saving tab: %w", err)
	}

	s.publish(ctx, Event{Type: EventTabSaved, UserID: userID, Tab: tab.Key, OccurredAt: s.engine.Now()})

	return &tab, nil
}

func (s *Service) RenameTab(ctx context.Context, userID, key, label string) (*Tab, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("%w: label is required", ErrInvalidInput)
	}

	if utf8.RuneCountInString(label) > maxNameLength {
		return nil, fmt.Errorf("%w: label longer than %d characters", ErrInvalidInput, maxNameLength)
	}

	tabs, err := s.ListTabs(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(tabs, func(t Tab) bool { return t.Key == key })
	if idx < 0 {
		return nil, fmt.Errorf("tab %q: %w", key, ErrNotFound)
	}

	tab := tabs[idx]
	tab.Label = label

	err = s.repo.SaveTab(ctx, userID, tab)
	observe("rename_tab", err)

	if err != nil {
		return nil, fmt.Errorf("saving tab: %w", err)
	}

	s.publish(ctx, Event{Type: EventTabSaved, UserID: userID, Tab: tab.Key, OccurredAt: s.engine.Now()})

	return &tab, nil
}

// DeleteTab removes a tab together with all of its ledgers. The main tab stays.
func (s *Service) DeleteTab(ctx context.Context, userID, key string) error {
	if key == TabMain || key == "" {
		return fmt.Errorf("tab %q: %w", TabMain, ErrProtectedTab)
	}

	err := s.repo.DeleteTab(ctx, userID, key)
	observe("delete_tab", err)

	if err != nil {
		return fmt.Errorf("deleting tab: %w", err)
	}

	s.publish(ctx, Event{Type: EventTabDeleted, UserID: userID, Tab: key, OccurredAt: s.engine.Now()})

	return nil
}

// update runs a whole-ledger action. The action is a pure function of the
// snapshot, so after a version conflict it is simply re-applied to a fresh read.
func (s *Service) update(ctx context.Context, op string, key Key, apply func(Ledger) (Ledger, error)) (*Ledger, error) {
	key = key.WithDefaultTab()

	l, err := s.tryUpdate(ctx, key, apply)
	observe(op, err)

	if err != nil {
		return nil, err
	}

	s.publish(ctx, ledgerEvent(EventLedgerUpdated, *l, "", s.engine.Now()))

	return l, nil
}

func (s *Service) tryUpdate(ctx context.Context, key Key, apply func(Ledger) (Ledger, error)) (*Ledger, error) {
	if err := s.checkWritable(ctx, key); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		current, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}

		next, err := apply(current)
		if err != nil {
			return nil, err
		}

		err = s.repo.PutLedger(ctx, &next)
		if err == nil {
			return &next, nil
		}

		if !errors.Is(err, ErrVersionConflict) || attempt >= s.retries {
			return nil, fmt.Errorf("saving ledger %s: %w", key, err)
		}

		metrics.LedgerConflicts.Inc()
		slog.DebugContext(ctx, "ledger changed concurrently, retrying", "ledger", key.String(), "attempt", attempt+1)
	}
}

func (s *Service) patch(ctx context.Context, op string, key Key, id string, p ItemPatch) (*Ledger, error) {
	key = key.WithDefaultTab()

	l, err := s.tryPatch(ctx, key, id, p)
	observe(op, err)

	if err != nil {
		return nil, err
	}

	s.publish(ctx, ledgerEvent(EventItemChanged, *l, id, s.engine.Now()))

	return l, nil
}

func (s *Service) tryPatch(ctx context.Context, key Key, id string, p ItemPatch) (*Ledger, error) {
	if err := s.checkWritable(ctx, key); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, fmt.Errorf("%w: empty item id", ErrInvalidInput)
	}

	if p.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}

	l, err := s.repo.PatchItem(ctx, key, id, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			return nil, err
		}

		return nil, fmt.Errorf("patching item %q in %s: %w", id, key, err)
	}

	return l, nil
}

func (s *Service) load(ctx context.Context, key Key) (Ledger, error) {
	l, err := s.repo.GetLedger(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return New(key), nil
	}

	if err != nil {
		return Ledger{}, fmt.Errorf("getting ledger %s: %w", key, err)
	}

	return Normalize(*l), nil
}

// checkWritable rejects writes to malformed keys and to tabs the user does not have.
func (s *Service) checkWritable(ctx context.Context, key Key) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if key.Tab == TabMain {
		return nil
	}

	tabs, err := s.repo.ListTabs(ctx, key.UserID)
	if err != nil {
		return fmt.Errorf("listing tabs: %w", err)
	}

	if !slices.ContainsFunc(tabs, func(t Tab) bool { return t.Key == key.Tab }) {
		return fmt.Errorf("tab %q: %w", key.Tab, errUnknownTab)
	}

	return nil
}

func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(e.Type)).Inc()
		slog.ErrorContext(ctx, "failed to publish event", "type", e.Type, "user", e.UserID, "error", err)
	}
}

func validateKey(key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}

	if !tabKeyPattern.MatchString(key.Tab) {
		return fmt.Errorf("%w: malformed tab key %q", ErrInvalidInput, key.Tab)
	}

	return nil
}

func observe(op string, err error) {
	metrics.LedgerOperations.WithLabelValues(op, metrics.Outcome(err, outcomeClasses)).Inc()
}

func boolOrder(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
