package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitos/trade_strategy_manager/internal/domain"
	"go.uber.org/zap"
)

// StrategyRepository owns the ordered strategy collection. Every mutation
// rewrites the whole collection to the store.
type StrategyRepository struct {
	store  domain.StrategyStore
	undo   *UndoBuffer
	logger *zap.Logger
	now    func() time.Time

	mu         sync.RWMutex
	strategies []*domain.Strategy
}

func NewStrategyRepository(store domain.StrategyStore, undo *UndoBuffer, logger *zap.Logger) *StrategyRepository {
	if undo == nil {
		undo = NewUndoBuffer(DefaultUndoWindow, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyRepository{
		store:  store,
		undo:   undo,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the time source used for meta timestamps.
func (r *StrategyRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// UndoBuffer exposes the buffer that receives deleted strategies.
func (r *StrategyRepository) UndoBuffer() *UndoBuffer {
	return r.undo
}

// Create validates f and appends a new strategy with version 1.
// A *domain.StoreError is returned together with the created strategy when
// only the persist step failed.
func (r *StrategyRepository) Create(ctx context.Context, f domain.Fields) (domain.Strategy, error) {
	if err := domain.Validate(f); err != nil {
		return domain.Strategy{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.timestamp()
	s := &domain.Strategy{
		ID: r.newIDLocked(),
		Meta: domain.Meta{
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
	}
	s.Apply(f)
	r.strategies = append(r.strategies, s)

	r.logger.Info("Strategy created", zap.String("id", s.ID), zap.String("name", s.Name))
	return s.Clone(), r.persistLocked(ctx)
}

// Update replaces the strategy with the given id in place. CreatedAt and ID
// carry over; the version goes up by one.
func (r *StrategyRepository) Update(ctx context.Context, id string, f domain.Fields) (domain.Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.Strategy{}, fmt.Errorf("update %s: %w", id, domain.ErrNotFound)
	}
	if err := domain.Validate(f); err != nil {
		return domain.Strategy{}, err
	}

	prev := r.strategies[idx]
	version := prev.Meta.Version
	if version < 1 {
		version = 1
	}
	// Stored times have millisecond precision; an update must still move updatedAt.
	updated := r.timestamp()
	if !updated.After(prev.Meta.UpdatedAt) {
		updated = prev.Meta.UpdatedAt.Add(time.Millisecond)
	}
	next := &domain.Strategy{
		ID: prev.ID,
		Meta: domain.Meta{
			CreatedAt: prev.Meta.CreatedAt,
			UpdatedAt: updated,
			Version:   version + 1,
		},
	}
	next.Apply(f)
	r.strategies[idx] = next

	r.logger.Info("Strategy updated", zap.String("id", next.ID), zap.Int("version", next.Meta.Version))
	return next.Clone(), r.persistLocked(ctx)
}

// Delete removes the strategy and hands a copy to the undo buffer.
func (r *StrategyRepository) Delete(ctx context.Context, id string) (domain.Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.Strategy{}, fmt.Errorf("delete %s: %w", id, domain.ErrNotFound)
	}

	removed := r.strategies[idx]
	r.strategies = append(r.strategies[:idx], r.strategies[idx+1:]...)
	r.undo.Record(*removed, idx)

	r.logger.Info("Strategy deleted", zap.String("id", removed.ID), zap.Int("index", idx))
	return removed.Clone(), r.persistLocked(ctx)
}

// Undo reinserts the most recently deleted strategy, clamping its original
// index to the current length. ok is false when nothing was undoable.
// An entry found past its deadline is reported to the expiry callback after
// the repository lock is released.
func (r *StrategyRepository) Undo(ctx context.Context) (restored domain.Strategy, ok bool, err error) {
	var lapsed *domain.Strategy
	defer func() {
		if lapsed != nil {
			r.undo.notifyExpired(*lapsed)
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok, lapsed := r.undo.take()
	if !ok {
		return domain.Strategy{}, false, nil
	}

	idx := min(max(entry.OriginalIndex, 0), len(r.strategies))
	s := entry.Strategy.Clone()
	r.strategies = append(r.strategies, nil)
	copy(r.strategies[idx+1:], r.strategies[idx:])
	r.strategies[idx] = &s

	r.logger.Info("Strategy restored", zap.String("id", s.ID), zap.Int("index", idx))
	return s.Clone(), true, r.persistLocked(ctx)
}

// FindByID returns a copy of the strategy with the given id.
func (r *StrategyRepository) FindByID(id string) (domain.Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.Strategy{}, false
	}
	return r.strategies[idx].Clone(), true
}

// List returns a snapshot of the collection in its current order.
func (r *StrategyRepository) List() []domain.Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Strategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		out = append(out, s.Clone())
	}
	return out
}

// Len reports the number of strategies in the collection.
func (r *StrategyRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.strategies)
}

// Persist writes the whole collection to the store.
func (r *StrategyRepository) Persist(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persistLocked(ctx)
}

// Restore replaces the in-memory collection with the stored one. Unreadable
// or malformed data yields an empty collection. It returns the number of
// strategies loaded.
func (r *StrategyRepository) Restore(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strategies = nil

	data, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("Failed to load strategies, starting empty", zap.Error(&domain.StoreError{Op: "load", Err: err}))
		return 0
	}
	if len(data) == 0 {
		return 0
	}

	var decoded []*domain.Strategy
	if err := json.Unmarshal(data, &decoded); err != nil {
		r.logger.Warn("Stored strategies are malformed, starting empty", zap.Error(err))
		return 0
	}

	seen := make(map[string]struct{}, len(decoded))
	for _, s := range decoded {
		if s == nil {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			r.logger.Warn("Skipping duplicate strategy id", zap.String("id", s.ID))
			continue
		}
		seen[s.ID] = struct{}{}
		s.Normalize()
		r.strategies = append(r.strategies, s)
	}

	r.logger.Info("Strategies restored", zap.Int("count", len(r.strategies)))
	return len(r.strategies)
}

func (r *StrategyRepository) persistLocked(ctx context.Context) error {
	list := r.strategies
	if list == nil {
		list = []*domain.Strategy{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return &domain.StoreError{Op: "encode", Err: err}
	}
	if err := r.store.Save(ctx, data); err != nil {
		r.logger.Error("Failed to persist strategies", zap.Error(err))
		return &domain.StoreError{Op: "save", Err: err}
	}
	return nil
}

func (r *StrategyRepository) indexLocked(id string) int {
	for i, s := range r.strategies {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (r *StrategyRepository) newIDLocked() string {
	for {
		id := uuid.NewString()
		if r.indexLocked(id) < 0 {
			return id
		}
	}
}

// timestamp matches the millisecond precision of ISO 8601 strings in the store.
func (r *StrategyRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}
