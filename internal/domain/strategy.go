package domain

import "time"

// MaxNameLength is the longest strategy name accepted, counted in characters.
const MaxNameLength = 80

// Strategy is a single trading-strategy record in the catalog.
type Strategy struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	Timeframes       []string   `json:"timeframes"`
	Indicators       []string   `json:"indicators"`
	EntryRules       []string   `json:"entry_rules"`
	ExitRules        []string   `json:"exit_rules"`
	StopLossRule     string     `json:"stoploss_rule"`
	TakeProfitRule   string     `json:"takeprofit_rule"`
	PositionSizeRule string     `json:"position_size_rule"`
	Management       Management `json:"management"`
	Meta             Meta       `json:"meta"`
}

// Meta carries the bookkeeping fields owned by the repository.
type Meta struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// Management holds the independently toggleable trade management options.
// Multiplier and PercentFirst are stored verbatim even when disabled.
type Management struct {
	TrailingStop TrailingStop `json:"trailing_stop"`
	ScaleOut     ScaleOut     `json:"scale_out"`
	DCA          Toggle       `json:"dca"`
	Manual       Toggle       `json:"manual"`
}

type TrailingStop struct {
	Enabled    bool   `json:"enabled"`
	Multiplier string `json:"multiplier"`
}

type ScaleOut struct {
	Enabled      bool   `json:"enabled"`
	PercentFirst string `json:"percent_first"`
}

type Toggle struct {
	Enabled bool `json:"enabled"`
}

// Fields is the complete, typed set of user-editable values used by create
// and update. Omitted values are zero values, never "unchanged".
type Fields struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	Timeframes       []string   `json:"timeframes"`
	Indicators       []string   `json:"indicators"`
	EntryRules       []string   `json:"entry_rules"`
	ExitRules        []string   `json:"exit_rules"`
	StopLossRule     string     `json:"stoploss_rule"`
	TakeProfitRule   string     `json:"takeprofit_rule"`
	PositionSizeRule string     `json:"position_size_rule"`
	Management       Management `json:"management"`
}

// Fields returns the editable part of the strategy.
func (s *Strategy) Fields() Fields {
	c := s.Clone()
	return Fields{
		Name:             c.Name,
		Description:      c.Description,
		Tags:             c.Tags,
		Timeframes:       c.Timeframes,
		Indicators:       c.Indicators,
		EntryRules:       c.EntryRules,
		ExitRules:        c.ExitRules,
		StopLossRule:     c.StopLossRule,
		TakeProfitRule:   c.TakeProfitRule,
		PositionSizeRule: c.PositionSizeRule,
		Management:       c.Management,
	}
}

// Apply copies f into the strategy, leaving ID and Meta untouched.
// The name is stored trimmed. List items are trimmed with empty ones dropped,
// and list fields never end up nil.
func (s *Strategy) Apply(f Fields) {
	s.Name = TrimName(f.Name)
	s.Description = f.Description
	s.Tags = CleanCommaList(f.Tags)
	s.Timeframes = CleanCommaList(f.Timeframes)
	s.Indicators = CleanCommaList(f.Indicators)
	s.EntryRules = CleanLines(f.EntryRules)
	s.ExitRules = CleanLines(f.ExitRules)
	s.StopLossRule = f.StopLossRule
	s.TakeProfitRule = f.TakeProfitRule
	s.PositionSizeRule = f.PositionSizeRule
	s.Management = f.Management
}

// Clone returns a deep copy that shares no slices with s.
func (s *Strategy) Clone() Strategy {
	c := *s
	c.Tags = copyList(s.Tags)
	c.Timeframes = copyList(s.Timeframes)
	c.Indicators = copyList(s.Indicators)
	c.EntryRules = copyList(s.EntryRules)
	c.ExitRules = copyList(s.ExitRules)
	return c
}

// Normalize replaces nil lists with empty ones so that decoded records
// serialize back as [] instead of null.
func (s *Strategy) Normalize() {
	s.Tags = copyList(s.Tags)
	s.Timeframes = copyList(s.Timeframes)
	s.Indicators = copyList(s.Indicators)
	s.EntryRules = copyList(s.EntryRules)
	s.ExitRules = copyList(s.ExitRules)
}

func copyList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
