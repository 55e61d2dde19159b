package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Entity names used in notifications and logs.
const (
	EntityAccount  = "account"
	EntityIncome   = "income"
	EntityExpense  = "expense"
	EntityTransfer = "transfer"
	EntityGoal     = "goal"
	EntityCapital  = "capital"
	EntityCredit   = "credit"
	EntityAsset    = "asset"
	EntitySettings = "settings"
	EntityPresets  = "presets"
	EntityLedger   = "ledger"
)

type (
	// Store persists the whole ledger.
	Store interface {
		Load(ctx context.Context) (*ledger.Ledger, storage.LoadReport, error)
		Save(ctx context.Context, l *ledger.Ledger) error
	}

	// Publisher announces committed changes. Failures never undo a save.
	Publisher interface {
		PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
	}

	Option func(*LedgerService)
)

func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(g *core.IDGenerator) Option {
	return func(s *LedgerService) { s.ids = g }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

// WithChangeHook registers fn to run after every committed mutation.
func WithChangeHook(fn func()) Option {
	return func(s *LedgerService) { s.hooks = append(s.hooks, fn) }
}

// LedgerService is the only writer of the ledger. Every mutation runs on a
// private copy: apply, recalculate, auto-archive, persist, and only then
// replace the shared state. A failed step leaves the ledger untouched.
type LedgerService struct {
	mu    sync.Mutex
	state *ledger.Ledger

	store     Store
	publisher Publisher
	ids       *core.IDGenerator
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger
	hooks     []func()
}

// NewLedgerService loads the ledger, repairs it and persists any repair.
func NewLedgerService(ctx context.Context, store Store, opts ...Option) (*LedgerService, error) {
	s := &LedgerService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.ids == nil {
		s.ids = core.NewIDGeneratorWithClock(s.now)
	}
	if s.logger == nil {
		s.logger = log.FromContext(ctx).WithComponent(log.ComponentLedger)
	}
	s.events = log.NewStructuredLogger(s.logger)

	l, report, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	s.ids.Observe(l.MaxID())

	l.Recalculate()
	archived := l.AutoArchiveCompletedGoals(s.now())
	if report.SeededAccounts || report.NormalizedGoalRefs > 0 || len(archived) > 0 {
		if err := store.Save(ctx, l); err != nil {
			return nil, fmt.Errorf("persist repaired ledger: %w", err)
		}
	}
	s.state = l

	s.logger.InfoContext(ctx, "Ledger loaded",
		"accounts", len(l.Accounts),
		"incomes", len(l.Incomes),
		"expenses", len(l.Expenses),
		"transfers", len(l.Transfers),
		"goals", len(l.Goals),
		"seeded_accounts", report.SeededAccounts,
		"normalized_goal_refs", report.NormalizedGoalRefs,
		"corrupt_keys", strings.Join(report.Corrupt, ","))

	if report.PresetsHealed {
		s.publish(ctx, log.OpUpdate, EntityPresets, 0)
	}
	return s, nil
}

// Snapshot returns a deep copy of the current ledger.
func (s *LedgerService) Snapshot() *ledger.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// mutate applies fn to a copy of the ledger, recalculates, auto-archives
// completed goals and persists. fn returns the id of the touched record.
func (s *LedgerService) mutate(ctx context.Context, op, entity string, fn func(l *ledger.Ledger) (core.ID, error)) error {
	s.mu.Lock()
	work := s.state.Clone()
	id, err := fn(work)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, core.ErrNotFound) {
			s.logger.DebugContext(ctx, "Ledger record not found",
				log.FieldOperation, op,
				log.FieldEntity, entity,
				log.FieldErrorType, log.ErrorTypeNotFound)
		} else {
			s.events.LogRejected(ctx, op, entity, err)
		}
		return err
	}

	stats := work.Recalculate()
	if stats.Orphans > 0 {
		s.logger.DebugContext(ctx, "Skipped orphaned ledger records", log.FieldOrphans, stats.Orphans)
	}
	archived := work.AutoArchiveCompletedGoals(s.now())

	if err := s.store.Save(ctx, work); err != nil {
		s.mu.Unlock()
		s.events.LogError(ctx, "Failed to persist ledger", err, op, log.ErrorTypeDatabase,
			log.NewFields().WithRecord(entity, int64(id)))
		return fmt.Errorf("persist ledger: %w", err)
	}
	s.state = work
	s.mu.Unlock()

	s.events.LogMutation(ctx, op, entity, int64(id))
	for _, goalID := range archived {
		s.events.LogMutation(ctx, log.OpArchive, EntityGoal, int64(goalID))
	}
	s.publish(ctx, op, entity, id)
	for _, hook := range s.hooks {
		hook()
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, op, entity string, id core.ID) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(op, entity, int64(id))
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		// the ledger is already saved
		s.events.LogError(ctx, "Failed to publish ledger change", err, op, log.ErrorTypeNetwork,
			log.NewFields().WithRecord(entity, int64(id)))
	}
}

func (s *LedgerService) dateOrToday(d core.Date) core.Date {
	if d.IsZero() {
		return core.Today(s.now())
	}
	return d
}

// AccountInput describes a new account. Balance becomes its baseline.
type AccountInput struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Currency core.Currency `json:"currency"`
	Balance  float64       `json:"balance"`
}

func (s *LedgerService) CreateAccount(ctx context.Context, in AccountInput) (core.Account, error) {
	var id core.ID
	err := s.mutate(ctx, log.OpCreate, EntityAccount, func(l *ledger.Ledger) (core.ID, error) {
		acc := core.Account{
			ID:       s.ids.Next(),
			Name:     strings.TrimSpace(in.Name),
			Type:     strings.TrimSpace(in.Type),
			Currency: in.Currency,
			Balance:  in.Balance,
		}
		if acc.Type == "" {
			acc.Type = core.DefaultAccountType
		}
		if acc.Currency == "" {
			acc.Currency = core.UAH
		}
		if err := acc.Validate(); err != nil {
			return 0, err
		}
		base := acc.Balance
		acc.InitialBalance = &base
		l.Accounts = append(l.Accounts, acc)
		id = acc.ID
		return id, nil
	})
	if err != nil {
		return core.Account{}, err
	}
	acc, err := s.Account(id)
	if err != nil {
		return core.Account{}, err
	}
	s.logger.InfoContext(ctx, "Account created",
		log.NewFields().
			WithAmount(acc.Balance, string(acc.Currency)).
			With(log.FieldAccountID, int64(id)).
			ToSlice()...)
	return acc, nil
}

// AdjustAccount applies a manual top-up (positive) or write-off (negative).
// The delta moves the baseline so that it survives recalculation.
func (s *LedgerService) AdjustAccount(ctx context.Context, id core.ID, delta float64) (core.Account, error) {
	err := s.mutate(ctx, log.OpAdjust, EntityAccount, func(l *ledger.Ledger) (core.ID, error) {
		if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
			return 0, core.ErrInvalidAmount
		}
		acc := l.Account(id)
		if acc == nil {
			return 0, core.ErrNotFound
		}
		l.Recalculate()
		base := *acc.InitialBalance + delta
		acc.InitialBalance = &base
		return id, nil
	})
	if err != nil {
		return core.Account{}, err
	}
	acc, err := s.Account(id)
	if err != nil {
		return core.Account{}, err
	}
	s.logger.InfoContext(ctx, "Account adjusted",
		log.NewFields().
			WithAmount(delta, string(acc.Currency)).
			With(log.FieldAccountID, int64(id)).
			ToSlice()...)
	return acc, nil
}

// Account returns the current state of one account.
func (s *LedgerService) Account(id core.ID) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc := s.state.Account(id); acc != nil {
		return *acc, nil
	}
	return core.Account{}, core.ErrNotFound
}

// DeleteAccount removes the account and cascades to every record that
// references it.
func (s *LedgerService) DeleteAccount(ctx context.Context, id core.ID) (ledger.CascadeResult, error) {
	var res ledger.CascadeResult
	err := s.mutate(ctx, log.OpDelete, EntityAccount, func(l *ledger.Ledger) (core.ID, error) {
		var err error
		res, err = l.DeleteAccount(id)
		return id, err
	})
	return res, err
}

// UpsertIncome replaces the income with the same id or appends a new one.
// A zero id gets a fresh one and a zero date becomes today.
func (s *LedgerService) UpsertIncome(ctx context.Context, item core.Income) (core.Income, error) {
	op := log.OpUpdate
	if item.ID == 0 {
		op = log.OpCreate
	}
	err := s.mutate(ctx, op, EntityIncome, func(l *ledger.Ledger) (core.ID, error) {
		item.Category = strings.TrimSpace(item.Category)
		if err := item.Validate(); err != nil {
			return 0, err
		}
		s.assignID(&item.ID)
		item.Date = s.dateOrToday(item.Date)
		l.UpsertIncome(item)
		return item.ID, nil
	})
	if err != nil {
		return core.Income{}, err
	}
	return item, nil
}

// assignID gives a zero id a fresh value. A caller-supplied id is observed
// so that later generated ids never collide with it.
func (s *LedgerService) assignID(id *core.ID) {
	if *id == 0 {
		*id = s.ids.Next()
		return
	}
	s.ids.Observe(*id)
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, log.OpDelete, EntityIncome, func(l *ledger.Ledger) (core.ID, error) {
		return id, l.DeleteIncome(id)
	})
}

// goalName finds a goal among active and archived goals.
func goalName(l *ledger.Ledger, id core.ID) (string, bool) {
	if g := l.Goal(id); g != nil {
		return g.Name, true
	}
	for _, g := range l.GoalsArchive {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}

// prepareExpense resolves the goal link of a goal-category expense and
// rebuilds its display label.
func prepareExpense(l *ledger.Ledger, e *core.Expense) error {
	e.Category = strings.TrimSpace(e.Category)
	e.Subcategory = strings.TrimSpace(e.Subcategory)
	if e.Category != core.GoalCategory {
		e.GoalID = nil
		return e.Validate()
	}
	ledger.NormalizeExpense(e)
	if e.GoalID == nil {
		return core.ErrUnknownGoal
	}
	name, ok := goalName(l, *e.GoalID)
	if !ok {
		return core.ErrUnknownGoal
	}
	e.Subcategory = core.GoalLabel(*e.GoalID, name)
	return e.Validate()
}

// UpsertExpense replaces the expense with the same id or appends a new one.
// Goal-category expenses must reference an existing goal.
func (s *LedgerService) UpsertExpense(ctx context.Context, item core.Expense) (core.Expense, error) {
	op := log.OpUpdate
	if item.ID == 0 {
		op = log.OpCreate
	}
	err := s.mutate(ctx, op, EntityExpense, func(l *ledger.Ledger) (core.ID, error) {
		if err := prepareExpense(l, &item); err != nil {
			return 0, err
		}
		s.assignID(&item.ID)
		item.Date = s.dateOrToday(item.Date)
		l.UpsertExpense(item)
		return item.ID, nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return item, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, log.OpDelete, EntityExpense, func(l *ledger.Ledger) (core.ID, error) {
		return id, l.DeleteExpense(id)
	})
}

// ContributeToGoal records a goal-category expense against accountID.
func (s *LedgerService) ContributeToGoal(ctx context.Context, goalID, accountID core.ID, amount float64, date core.Date) (core.Expense, error) {
	var (
		created core.Expense
		cur     core.Currency
	)
	err := s.mutate(ctx, log.OpContribute, EntityGoal, func(l *ledger.Ledger) (core.ID, error) {
		g := l.Goal(goalID)
		if g == nil {
			return 0, core.ErrUnknownGoal
		}
		acc := l.Account(accountID)
		if acc == nil {
			return 0, core.ErrUnknownAccount
		}
		cur = acc.Currency
		id := goalID
		created = core.Expense{
			ID:          s.ids.Next(),
			Amount:      amount,
			Category:    core.GoalCategory,
			Subcategory: core.GoalLabel(goalID, g.Name),
			AccountID:   accountID,
			Date:        s.dateOrToday(date),
			GoalID:      &id,
		}
		if err := created.Validate(); err != nil {
			return 0, err
		}
		l.Expenses = append(l.Expenses, created)
		return goalID, nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	s.logger.InfoContext(ctx, "Goal contribution recorded",
		log.NewFields().
			WithAmount(amount, string(cur)).
			With(log.FieldGoalID, int64(goalID)).
			With(log.FieldAccountID, int64(accountID)).
			ToSlice()...)
	return created, nil
}

// CreateTransfer moves money between two accounts of the same currency.
func (s *LedgerService) CreateTransfer(ctx context.Context, tr core.Transfer) (core.Transfer, error) {
	err := s.mutate(ctx, log.OpCreate, EntityTransfer, func(l *ledger.Ledger) (core.ID, error) {
		if err := tr.Validate(); err != nil {
			return 0, err
		}
		from, to := l.Account(tr.FromAccountID), l.Account(tr.ToAccountID)
		if from == nil || to == nil {
			return 0, core.ErrUnknownAccount
		}
		if from.Currency != to.Currency {
			return 0, core.ErrCurrencyMismatch
		}
		tr.ID = s.ids.Next()
		tr.Note = strings.TrimSpace(tr.Note)
		tr.Date = s.dateOrToday(tr.Date)
		l.Transfers = append(l.Transfers, tr)
		return tr.ID, nil
	})
	if err != nil {
		return core.Transfer{}, err
	}
	return tr, nil
}

func (s *LedgerService) DeleteTransfer(ctx context.Context, id core.ID) error {
	return s.mutate(ctx, log.OpDelete, EntityTransfer, func(l *ledger.Ledger) (core.ID, error) {
		return id, l.DeleteTransfer(id)
	})
}

// CreateGoal adds a savings goal; saved becomes its baseline. A goal that
// is already complete is archived right away.
func (s *LedgerService) CreateGoal(ctx context.Context, name string, target, saved float64) (core.Goal, error) {
	g := core.Goal{Name: strings.TrimSpace(name), Target: target, Saved: saved}
	err := s.mutate(ctx, log.OpCreate, EntityGoal, func(l *ledger.Ledger) (core.ID, error) {
		if err := g.Validate(); err != nil {
			return 0, err
		}
		g.ID = s.ids.Next()
		base := saved
		g.InitialSaved = &base
		l.Goals = append(l.Goals, g)
		return g.ID, nil
	})
	if err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// MoveGoalToArchive archives a goal regardless of its progress. A zero
// completedAt is replaced by the current time.
func (s *LedgerService) MoveGoalToArchive(ctx context.Context, goalID core.ID, completedAt time.Time) error {
	if completedAt.IsZero() {
		completedAt = s.now()
	}
	return s.mutate(ctx, log.OpArchive, EntityGoal, func(l *ledger.Ledger) (core.ID, error) {
		return goalID, l.MoveGoalToArchive(goalID, completedAt)
	})
}

// AutoArchiveCompletedGoals archives every goal that reached its target
// and persists only when something moved.
func (s *LedgerService) AutoArchiveCompletedGoals(ctx context.Context) ([]core.ID, error) {
	var archived []core.ID
	err := s.mutate(ctx, log.OpArchive, EntityGoal, func(l *ledger.Ledger) (core.ID, error) {
		l.Recalculate()
		archived = l.AutoArchiveCompletedGoals(s.now())
		if len(archived) == 0 {
			return 0, core.ErrNotFound
		}
		return archived[0], nil
	})
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return archived, err
}

// Recalculate forces a full recalculation and persists the result.
func (s *LedgerService) Recalculate(ctx context.Context) (ledger.RecalcStats, error) {
	var stats ledger.RecalcStats
	err := s.mutate(ctx, log.OpRecalc, EntityLedger, func(l *ledger.Ledger) (core.ID, error) {
		stats = l.Recalculate()
		return 0, nil
	})
	return stats, err
}
