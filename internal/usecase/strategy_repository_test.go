package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_strategy_manager/internal/domain"
	"github.com/vitos/trade_strategy_manager/internal/usecase"
	"go.uber.org/zap"
)

// fakeClock advances one second per reading.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newRepo(t *testing.T, store *MockStore, window time.Duration) *usecase.StrategyRepository {
	t.Helper()
	undo := usecase.NewUndoBuffer(window, nil)
	t.Cleanup(undo.Stop)
	repo := usecase.NewStrategyRepository(store, undo, zap.NewNop())
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	repo.SetClock(clock.Now)
	return repo
}

func ids(list []domain.Strategy) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func TestRepository_CreateAssignsMeta(t *testing.T) {
	store := &MockStore{}
	repo := newRepo(t, store, time.Minute)
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Fields{Name: "  Breakout ", Tags: []string{"trend", "breakout"}})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Breakout", created.Name)
	assert.Equal(t, 1, created.Meta.Version)
	assert.Equal(t, created.Meta.CreatedAt, created.Meta.UpdatedAt)
	assert.Equal(t, []string{}, created.Timeframes)

	found, ok := repo.FindByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, found)
	assert.Equal(t, 1, store.SaveCalls)
}

func TestRepository_CreateAppendsAndAssignsUniqueIDs(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	ctx := context.Background()

	a, err := repo.Create(ctx, domain.Fields{Name: "A"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, domain.Fields{Name: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []string{a.ID, b.ID}, ids(repo.List()))
}

func TestRepository_InvalidFieldsLeaveCollectionUnchanged(t *testing.T) {
	store := &MockStore{}
	repo := newRepo(t, store, time.Minute)
	ctx := context.Background()

	existing, err := repo.Create(ctx, domain.Fields{Name: "Keep"})
	require.NoError(t, err)
	before := repo.List()

	for _, name := range []string{"", "   ", strings.Repeat("x", 81)} {
		_, err := repo.Create(ctx, domain.Fields{Name: name})
		assert.True(t, errors.Is(err, domain.ErrValidation), "create %q", name)

		_, err = repo.Update(ctx, existing.ID, domain.Fields{Name: name})
		assert.True(t, errors.Is(err, domain.ErrValidation), "update %q", name)
	}

	assert.Equal(t, before, repo.List())
	assert.Equal(t, 1, store.SaveCalls)
}

func TestRepository_Update(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	ctx := context.Background()

	a, _ := repo.Create(ctx, domain.Fields{Name: "A"})
	b, _ := repo.Create(ctx, domain.Fields{Name: "B", Tags: []string{"x"}})
	c, _ := repo.Create(ctx, domain.Fields{Name: "C"})

	updated, err := repo.Update(ctx, b.ID, domain.Fields{Name: "B2"})
	require.NoError(t, err)

	assert.Equal(t, b.ID, updated.ID)
	assert.Equal(t, "B2", updated.Name)
	assert.Empty(t, updated.Tags, "omitted fields are zero values, not kept")
	assert.Equal(t, 2, updated.Meta.Version)
	assert.Equal(t, b.Meta.CreatedAt, updated.Meta.CreatedAt)
	assert.True(t, updated.Meta.UpdatedAt.After(b.Meta.UpdatedAt))

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(repo.List()), "position is kept")

	again, err := repo.Update(ctx, b.ID, domain.Fields{Name: "B3"})
	require.NoError(t, err)
	assert.Equal(t, 3, again.Meta.Version)
}

func TestRepository_UpdateUnknownID(t *testing.T) {
	store := &MockStore{}
	repo := newRepo(t, store, time.Minute)

	_, err := repo.Update(context.Background(), "missing", domain.Fields{Name: "x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, store.SaveCalls)
}

func TestRepository_DeleteUnknownID(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	_, _ = repo.Create(context.Background(), domain.Fields{Name: "A"})

	_, err := repo.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 1, repo.Len())
}

func TestRepository_DeleteThenUndoRestoresAtIndex(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	ctx := context.Background()

	a, _ := repo.Create(ctx, domain.Fields{Name: "A"})
	b, _ := repo.Create(ctx, domain.Fields{Name: "B", Tags: []string{"t"}, EntryRules: []string{"r1"}})
	c, _ := repo.Create(ctx, domain.Fields{Name: "C"})

	removed, err := repo.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, removed)

	_, ok := repo.FindByID(b.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{a.ID, c.ID}, ids(repo.List()))

	restored, ok, err := repo.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, b, restored)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(repo.List()))

	_, ok, err = repo.Undo(ctx)
	assert.NoError(t, err)
	assert.False(t, ok, "undo is consumed")
}

func TestRepository_UndoClampsToEnd(t *testing.T) {
	store := &MockStore{}
	repo := newRepo(t, store, time.Minute)
	ctx := context.Background()

	_, _ = repo.Create(ctx, domain.Fields{Name: "A"})
	_, _ = repo.Create(ctx, domain.Fields{Name: "B"})
	c, _ := repo.Create(ctx, domain.Fields{Name: "C"})

	_, err := repo.Delete(ctx, c.ID)
	require.NoError(t, err)

	// The collection shrinks below the recorded index while undo is pending.
	store.Data = []byte("[]")
	require.Equal(t, 0, repo.Restore(ctx))

	restored, ok, err := repo.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c, restored)
	assert.Equal(t, []string{c.ID}, ids(repo.List()))
}

func TestRepository_SecondDeleteDropsFirstUndo(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	ctx := context.Background()

	a, _ := repo.Create(ctx, domain.Fields{Name: "A"})
	b, _ := repo.Create(ctx, domain.Fields{Name: "B"})
	c, _ := repo.Create(ctx, domain.Fields{Name: "C"})

	_, _ = repo.Delete(ctx, a.ID)
	_, _ = repo.Delete(ctx, c.ID)

	restored, ok, err := repo.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.ID, restored.ID)
	assert.Equal(t, []string{b.ID, c.ID}, ids(repo.List()))

	_, ok, _ = repo.Undo(ctx)
	assert.False(t, ok)
	_, found := repo.FindByID(a.ID)
	assert.False(t, found)
}

func TestRepository_UndoAfterWindowIsNoOp(t *testing.T) {
	repo := newRepo(t, &MockStore{}, 20*time.Millisecond)
	ctx := context.Background()

	a, _ := repo.Create(ctx, domain.Fields{Name: "A"})
	_, _ = repo.Delete(ctx, a.ID)

	time.Sleep(60 * time.Millisecond)

	_, ok, err := repo.Undo(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
}

func TestRepository_PersistFailureKeepsMutation(t *testing.T) {
	store := &MockStore{SaveErr: errors.New("disk full")}
	repo := newRepo(t, store, time.Minute)

	created, err := repo.Create(context.Background(), domain.Fields{Name: "A"})

	var storeErr *domain.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "save", storeErr.Op)
	assert.NotEmpty(t, created.ID)

	_, ok := repo.FindByID(created.ID)
	assert.True(t, ok)
}

func TestRepository_PersistRestoreRoundTrip(t *testing.T) {
	store := &MockStore{}
	repo := newRepo(t, store, time.Minute)
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.Fields{
		Name:       "Breakout",
		Tags:       []string{"trend", "breakout"},
		EntryRules: []string{"close above range high"},
		Management: domain.Management{
			TrailingStop: domain.TrailingStop{Enabled: true, Multiplier: "2"},
			ScaleOut:     domain.ScaleOut{Enabled: false, PercentFirst: "50"},
			Manual:       domain.Toggle{Enabled: true},
		},
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Fields{Name: "Mean reversion"})
	require.NoError(t, err)

	reloaded := newRepo(t, store, time.Minute)
	assert.Equal(t, 2, reloaded.Restore(ctx))
	assert.Equal(t, repo.List(), reloaded.List())
}

func TestRepository_RestoreDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		store *MockStore
	}{
		{name: "nothing stored", store: &MockStore{}},
		{name: "malformed json", store: &MockStore{Data: []byte("{not json")}},
		{name: "wrong shape", store: &MockStore{Data: []byte(`{"id":"1"}`)}},
		{name: "load failure", store: &MockStore{LoadErr: errors.New("io")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t, tt.store, time.Minute)
			assert.Equal(t, 0, repo.Restore(context.Background()))
			assert.Empty(t, repo.List())
		})
	}
}

func TestRepository_RestoreAcceptsStoredFormat(t *testing.T) {
	blob := `[{"id":"abc","name":"Legacy","tags":["a"],
		"management":{"trailing_stop":{"enabled":true,"multiplier":"1.5"},"scale_out":{"enabled":false,"percent_first":""},"dca":{"enabled":false},"manual":{"enabled":false}},
		"meta":{"createdAt":"2024-01-02T03:04:05.000Z","updatedAt":"2024-01-03T03:04:05.000Z","version":4}}]`
	repo := newRepo(t, &MockStore{Data: []byte(blob)}, time.Minute)

	require.Equal(t, 1, repo.Restore(context.Background()))
	s, ok := repo.FindByID("abc")
	require.True(t, ok)
	assert.Equal(t, "Legacy", s.Name)
	assert.Equal(t, 4, s.Meta.Version)
	assert.Equal(t, "1.5", s.Management.TrailingStop.Multiplier)
	assert.Equal(t, []string{}, s.ExitRules)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), s.Meta.CreatedAt.UTC())
}

func TestRepository_ListIsSnapshot(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	a, _ := repo.Create(context.Background(), domain.Fields{Name: "A", Tags: []string{"x"}})

	list := repo.List()
	list[0].Name = "mutated"
	list[0].Tags[0] = "mutated"

	found, _ := repo.FindByID(a.ID)
	assert.Equal(t, "A", found.Name)
	assert.Equal(t, []string{"x"}, found.Tags)
}

func TestRepository_Scenario(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	ctx := context.Background()

	other, _ := repo.Create(ctx, domain.Fields{Name: "Other"})
	s, err := repo.Create(ctx, domain.Fields{Name: "Breakout", Tags: []string{"trend", "breakout"}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Meta.Version)

	v2, err := repo.Update(ctx, s.ID, domain.Fields{Name: "Breakout v2", Tags: []string{"trend"}})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Meta.Version)
	assert.Equal(t, "Breakout v2", v2.Name)
	assert.Equal(t, s.Meta.CreatedAt, v2.Meta.CreatedAt)

	_, err = repo.Delete(ctx, s.ID)
	require.NoError(t, err)
	_, ok := repo.FindByID(s.ID)
	assert.False(t, ok)

	restored, ok, err := repo.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v2, restored)
	assert.Equal(t, []string{other.ID, s.ID}, ids(repo.List()))
}

func TestRepository_UpdateAdvancesUpdatedAtOnFrozenClock(t *testing.T) {
	repo := newRepo(t, &MockStore{}, time.Minute)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return fixed })
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Fields{Name: "A"})
	require.NoError(t, err)

	first, err := repo.Update(ctx, created.ID, domain.Fields{Name: "B"})
	require.NoError(t, err)
	second, err := repo.Update(ctx, created.ID, domain.Fields{Name: "C"})
	require.NoError(t, err)

	assert.Equal(t, fixed, first.Meta.CreatedAt)
	assert.True(t, first.Meta.UpdatedAt.After(created.Meta.UpdatedAt))
	assert.True(t, second.Meta.UpdatedAt.After(first.Meta.UpdatedAt))
	assert.Equal(t, fixed.Add(2*time.Millisecond), second.Meta.UpdatedAt)
}

func TestRepository_UndoAfterDeadlineNotifiesOutsideLock(t *testing.T) {
	var repo *usecase.StrategyRepository
	lengths := make(chan int, 1)
	undo := usecase.NewUndoBuffer(20*time.Millisecond, func(domain.Strategy) {
		lengths <- repo.Len()
	})
	t.Cleanup(undo.Stop)
	repo = usecase.NewStrategyRepository(&MockStore{}, undo, zap.NewNop())
	ctx := context.Background()

	a, err := repo.Create(ctx, domain.Fields{Name: "A"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.Fields{Name: "B"})
	require.NoError(t, err)
	_, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)

	// Keep the timer from firing so Undo is the one that sees the lapse.
	undo.Stop()
	time.Sleep(40 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, ok, err := repo.Undo(ctx)
		assert.NoError(t, err)
		assert.False(t, ok)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Undo deadlocked in the expiry callback")
	}
	assert.Equal(t, 1, <-lengths)
}

func TestRepository_RestoreSkipsDuplicateIDs(t *testing.T) {
	store := &MockStore{Data: []byte(`[
		{"id":"a","name":"First","meta":{"version":1}},
		{"id":"b","name":"Other","meta":{"version":1}},
		{"id":"a","name":"Second","meta":{"version":4}}
	]`)}
	repo := newRepo(t, store, time.Minute)

	assert.Equal(t, 2, repo.Restore(context.Background()))
	assert.Equal(t, []string{"a", "b"}, ids(repo.List()))

	got, ok := repo.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, "First", got.Name)
	assert.Equal(t, 1, got.Meta.Version)
}
