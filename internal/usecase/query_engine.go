package usecase

import (
	"strings"
	"sync"
	"time"

	"github.com/vitos/trade_strategy_manager/internal/domain"
)

// ViewOptions controls how timestamps are rendered for display and search.
type ViewOptions struct {
	DateLayout     string
	DateTimeLayout string
	Location       *time.Location
}

func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		DateLayout:     "1/2/2006",
		DateTimeLayout: "1/2/2006, 3:04:05 PM",
		Location:       time.Local,
	}
}

// QueryEngine tracks the current selection and derives filtered views from
// the repository. It never mutates the repository.
type QueryEngine struct {
	repo *StrategyRepository
	opts ViewOptions

	mu        sync.RWMutex
	currentID string
}

func NewQueryEngine(repo *StrategyRepository, opts ViewOptions) *QueryEngine {
	def := DefaultViewOptions()
	if opts.DateLayout == "" {
		opts.DateLayout = def.DateLayout
	}
	if opts.DateTimeLayout == "" {
		opts.DateTimeLayout = def.DateTimeLayout
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	return &QueryEngine{repo: repo, opts: opts}
}

// Select makes id the current strategy. An unknown id clears the selection.
func (q *QueryEngine) Select(id string) (domain.Strategy, bool) {
	s, ok := q.repo.FindByID(id)

	q.mu.Lock()
	defer q.mu.Unlock()
	if ok {
		q.currentID = id
	} else {
		q.currentID = ""
	}
	return s, ok
}

// ClearSelection forgets the current strategy, as when starting a new one.
func (q *QueryEngine) ClearSelection() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.currentID = ""
}

// CurrentID returns the selected id, or "" when nothing is selected.
func (q *QueryEngine) CurrentID() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.currentID
}

// Current re-reads the selected strategy so callers always see the
// latest version. It reports false if the selection is empty or gone.
func (q *QueryEngine) Current() (domain.Strategy, bool) {
	id := q.CurrentID()
	if id == "" {
		return domain.Strategy{}, false
	}
	return q.repo.FindByID(id)
}

// Filter returns the strategies whose name, joined tag list or updated date
// contains query, ignoring case. An empty query returns everything.
func (q *QueryEngine) Filter(query string) []domain.Strategy {
	all := q.repo.List()
	if query == "" {
		return all
	}

	needle := strings.ToLower(query)
	out := make([]domain.Strategy, 0, len(all))
	for _, s := range all {
		if q.matches(s, needle) {
			out = append(out, s)
		}
	}
	return out
}

func (q *QueryEngine) matches(s domain.Strategy, needle string) bool {
	for _, field := range []string{s.Name, joinTags(s.Tags), q.FormatDate(s.Meta.UpdatedAt)} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FormatDate renders t the way list items show it.
func (q *QueryEngine) FormatDate(t time.Time) string {
	return t.In(q.opts.Location).Format(q.opts.DateLayout)
}

// FormatDateTime renders t the way the detail view shows it.
func (q *QueryEngine) FormatDateTime(t time.Time) string {
	return t.In(q.opts.Location).Format(q.opts.DateTimeLayout)
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
