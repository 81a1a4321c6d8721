package web

import (
	"net/url"
	"strings"

	"github.com/vitos/trade_strategy_manager/internal/domain"
)

// FormData is the raw text of the strategy form, one value per input.
type FormData struct {
	ID                     string
	Name                   string
	Description            string
	Tags                   string
	Timeframes             string
	Indicators             string
	EntryRules             string
	ExitRules              string
	StopLossRule           string
	TakeProfitRule         string
	PositionSizeRule       string
	TrailingStopEnabled    bool
	TrailingStopMultiplier string
	ScaleOutEnabled        bool
	ScaleOutPercent        string
	DCAEnabled             bool
	ManualEnabled          bool
	Error                  string
}

// ParseForm reads the strategy form inputs into FormData.
func ParseForm(form url.Values) FormData {
	return FormData{
		Name:                   form.Get("name"),
		Description:            form.Get("description"),
		Tags:                   form.Get("tags"),
		Timeframes:             form.Get("timeframes"),
		Indicators:             form.Get("indicators"),
		EntryRules:             form.Get("entry_rules"),
		ExitRules:              form.Get("exit_rules"),
		StopLossRule:           form.Get("stoploss_rule"),
		TakeProfitRule:         form.Get("takeprofit_rule"),
		PositionSizeRule:       form.Get("position_size_rule"),
		TrailingStopEnabled:    checked(form, "trailing_stop_enabled"),
		TrailingStopMultiplier: form.Get("trailing_stop_multiplier"),
		ScaleOutEnabled:        checked(form, "scale_out_enabled"),
		ScaleOutPercent:        form.Get("scale_out_percent"),
		DCAEnabled:             checked(form, "dca_enabled"),
		ManualEnabled:          checked(form, "manual_enabled"),
	}
}

// Fields converts the raw form text into the typed record the repository takes.
// Management values are kept verbatim.
func (f FormData) Fields() domain.Fields {
	return domain.Fields{
		Name:             strings.TrimSpace(f.Name),
		Description:      strings.TrimSpace(f.Description),
		Tags:             domain.SplitCommaList(f.Tags),
		Timeframes:       domain.SplitCommaList(f.Timeframes),
		Indicators:       domain.SplitCommaList(f.Indicators),
		EntryRules:       domain.SplitLines(f.EntryRules),
		ExitRules:        domain.SplitLines(f.ExitRules),
		StopLossRule:     strings.TrimSpace(f.StopLossRule),
		TakeProfitRule:   strings.TrimSpace(f.TakeProfitRule),
		PositionSizeRule: strings.TrimSpace(f.PositionSizeRule),
		Management: domain.Management{
			TrailingStop: domain.TrailingStop{Enabled: f.TrailingStopEnabled, Multiplier: f.TrailingStopMultiplier},
			ScaleOut:     domain.ScaleOut{Enabled: f.ScaleOutEnabled, PercentFirst: f.ScaleOutPercent},
			DCA:          domain.Toggle{Enabled: f.DCAEnabled},
			Manual:       domain.Toggle{Enabled: f.ManualEnabled},
		},
	}
}

// FormFromStrategy fills the form for editing an existing strategy.
func FormFromStrategy(s domain.Strategy) FormData {
	m := s.Management
	return FormData{
		ID:                     s.ID,
		Name:                   s.Name,
		Description:            s.Description,
		Tags:                   strings.Join(s.Tags, ", "),
		Timeframes:             strings.Join(s.Timeframes, ", "),
		Indicators:             strings.Join(s.Indicators, ", "),
		EntryRules:             strings.Join(s.EntryRules, "\n"),
		ExitRules:              strings.Join(s.ExitRules, "\n"),
		StopLossRule:           s.StopLossRule,
		TakeProfitRule:         s.TakeProfitRule,
		PositionSizeRule:       s.PositionSizeRule,
		TrailingStopEnabled:    m.TrailingStop.Enabled,
		TrailingStopMultiplier: m.TrailingStop.Multiplier,
		ScaleOutEnabled:        m.ScaleOut.Enabled,
		ScaleOutPercent:        m.ScaleOut.PercentFirst,
		DCAEnabled:             m.DCA.Enabled,
		ManualEnabled:          m.Manual.Enabled,
	}
}

func checked(form url.Values, key string) bool {
	if !form.Has(key) {
		return false
	}
	switch strings.ToLower(form.Get(key)) {
	case "", "off", "false", "0":
		return false
	}
	return true
}
