package usecase

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vitos/trade_strategy_manager/internal/domain"
)

// ListItem is one row of the strategy list.
type ListItem struct {
	ID          string
	Name        string
	TagsText    string
	UpdatedDate string
	Selected    bool
}

// MetaText is the secondary line shown under the name.
func (i ListItem) MetaText() string {
	return "Tags: " + i.TagsText + " | Updated: " + i.UpdatedDate
}

// ManagementStatus describes one management option in the detail view.
type ManagementStatus struct {
	Key     string
	Label   string
	Enabled bool
	Extra   string
}

func (m ManagementStatus) Text() string {
	if !m.Enabled {
		return m.Label + ": Disabled"
	}
	return m.Label + ": Enabled" + m.Extra
}

// DetailView is the structured projection of a single strategy.
type DetailView struct {
	ID           string
	Name         string
	Description  string
	Tags         []string
	Timeframes   []string
	Indicators   []string
	Created      string
	Updated      string
	Version      int
	EntryRules   []string
	ExitRules    []string
	StopLoss     string
	TakeProfit   string
	PositionSize string
	Management   []ManagementStatus
}

// ListItems filters the collection and marks the current selection.
func (q *QueryEngine) ListItems(query string) []ListItem {
	current := q.CurrentID()
	strategies := q.Filter(query)

	items := make([]ListItem, 0, len(strategies))
	for _, s := range strategies {
		tags := joinTags(s.Tags)
		if tags == "" {
			tags = "No tags"
		}
		items = append(items, ListItem{
			ID:          s.ID,
			Name:        s.Name,
			TagsText:    tags,
			UpdatedDate: q.FormatDate(s.Meta.UpdatedAt),
			Selected:    s.ID == current,
		})
	}
	return items
}

// Detail projects s into its structured view.
func (q *QueryEngine) Detail(s domain.Strategy) DetailView {
	return DetailView{
		ID:           s.ID,
		Name:         s.Name,
		Description:  orDefault(s.Description, "No description"),
		Tags:         s.Tags,
		Timeframes:   s.Timeframes,
		Indicators:   s.Indicators,
		Created:      q.FormatDateTime(s.Meta.CreatedAt),
		Updated:      q.FormatDateTime(s.Meta.UpdatedAt),
		Version:      s.Meta.Version,
		EntryRules:   s.EntryRules,
		ExitRules:    s.ExitRules,
		StopLoss:     orDefault(s.StopLossRule, "Not specified"),
		TakeProfit:   orDefault(s.TakeProfitRule, "Not specified"),
		PositionSize: orDefault(s.PositionSizeRule, "Not specified"),
		Management:   managementStatus(s.Management),
	}
}

// RawView is the serialized form of s, indented for reading.
func RawView(s domain.Strategy) (string, error) {
	s.Normalize()
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func managementStatus(m domain.Management) []ManagementStatus {
	var trailing, scale string
	if m.TrailingStop.Multiplier != "" {
		trailing = " (" + formatNumber(m.TrailingStop.Multiplier) + "x)"
	}
	if m.ScaleOut.PercentFirst != "" {
		scale = " (" + formatNumber(m.ScaleOut.PercentFirst) + "%)"
	}

	opts := []ManagementStatus{
		{Key: "trailing_stop", Label: "Trailing Stop", Enabled: m.TrailingStop.Enabled, Extra: trailing},
		{Key: "scale_out", Label: "Scale Out", Enabled: m.ScaleOut.Enabled, Extra: scale},
		{Key: "dca", Label: "DCA", Enabled: m.DCA.Enabled},
		{Key: "manual", Label: "Manual", Enabled: m.Manual.Enabled},
	}
	for i := range opts {
		if !opts[i].Enabled {
			opts[i].Extra = ""
		}
	}
	return opts
}

// formatNumber shows management values as entered, except that a plain
// decimal loses trailing fractional zeros ("2.50" -> "2.5"). Exponents,
// signs and leading zeros are never rewritten.
func formatNumber(v string) string {
	v = strings.TrimSpace(v)
	if !strings.Contains(v, ".") || strings.ContainsAny(v, "eE") {
		return v
	}
	if _, err := decimal.NewFromString(v); err != nil {
		return v
	}
	v = strings.TrimRight(v, "0")
	return strings.TrimSuffix(v, ".")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
