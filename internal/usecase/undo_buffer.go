package usecase

import (
	"sync"
	"time"

	"github.com/vitos/trade_strategy_manager/internal/domain"
)

// DefaultUndoWindow is how long a deleted strategy stays recoverable.
const DefaultUndoWindow = 6000 * time.Millisecond

// UndoEntry is a detached copy of a deleted strategy and where it used to be.
type UndoEntry struct {
	Strategy      domain.Strategy
	OriginalIndex int
}

// UndoBuffer holds at most one recently deleted strategy for a bounded window.
type UndoBuffer struct {
	window   time.Duration
	onExpire func(domain.Strategy)

	mu       sync.Mutex
	entry    *UndoEntry
	deadline time.Time
	timer    *time.Timer
	gen      uint64
}

// NewUndoBuffer creates an empty buffer. A non-positive window falls back to
// DefaultUndoWindow. onExpire, if set, is called outside the lock whenever a
// buffered entry lapses without being undone.
func NewUndoBuffer(window time.Duration, onExpire func(domain.Strategy)) *UndoBuffer {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &UndoBuffer{
		window:   window,
		onExpire: onExpire,
	}
}

// Window returns the validity window applied to each recorded entry.
func (b *UndoBuffer) Window() time.Duration {
	return b.window
}

// Record replaces any buffered entry and restarts the validity timer.
func (b *UndoBuffer) Record(s domain.Strategy, index int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopTimerLocked()
	b.gen++
	gen := b.gen

	b.entry = &UndoEntry{Strategy: s.Clone(), OriginalIndex: index}
	b.deadline = time.Now().Add(b.window)
	b.timer = time.AfterFunc(b.window, func() { b.expire(gen) })
}

// Take removes and returns the buffered entry if it is still within its window.
func (b *UndoBuffer) Take() (UndoEntry, bool) {
	e, ok, lapsed := b.take()
	if lapsed != nil {
		b.notifyExpired(*lapsed)
	}
	return e, ok
}

// take is Take without the expiry callback. When the deadline passed before
// the timer fired, the dropped strategy is returned so the caller can notify
// once it holds no locks of its own.
func (b *UndoBuffer) take() (e UndoEntry, ok bool, lapsed *domain.Strategy) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.entry == nil {
		return UndoEntry{}, false, nil
	}

	e = *b.entry
	expired := !time.Now().Before(b.deadline)
	b.clearLocked()
	if expired {
		return UndoEntry{}, false, &e.Strategy
	}
	return e, true, nil
}

// Peek reports the buffered entry without consuming it.
func (b *UndoBuffer) Peek() (UndoEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.entry == nil || !time.Now().Before(b.deadline) {
		return UndoEntry{}, false
	}
	e := *b.entry
	e.Strategy = e.Strategy.Clone()
	return e, true
}

// Stop cancels a pending expiry timer without clearing the entry.
// Safe to call repeatedly.
func (b *UndoBuffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopTimerLocked()
}

func (b *UndoBuffer) expire(gen uint64) {
	b.mu.Lock()
	if gen != b.gen || b.entry == nil {
		b.mu.Unlock()
		return
	}
	s := b.entry.Strategy
	b.clearLocked()
	b.mu.Unlock()

	b.notifyExpired(s)
}

func (b *UndoBuffer) notifyExpired(s domain.Strategy) {
	if b.onExpire != nil {
		b.onExpire(s)
	}
}

func (b *UndoBuffer) clearLocked() {
	b.stopTimerLocked()
	b.gen++
	b.entry = nil
	b.deadline = time.Time{}
}

func (b *UndoBuffer) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
