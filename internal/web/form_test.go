package web_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/trade_strategy_manager/internal/domain"
	"github.com/vitos/trade_strategy_manager/internal/web"
)

func TestParseForm(t *testing.T) {
	form := url.Values{
		"name":                     {"  Breakout  "},
		"description":              {" desc "},
		"tags":                     {"trend, breakout"},
		"timeframes":               {"1h,4h"},
		"indicators":               {"EMA 20"},
		"entry_rules":              {"rule one\nrule two"},
		"exit_rules":               {""},
		"stoploss_rule":            {" 1 ATR "},
		"trailing_stop_enabled":    {"on"},
		"trailing_stop_multiplier": {" 2 "},
		"scale_out_percent":        {"50"},
		"dca_enabled":              {"off"},
		"manual_enabled":           {"true"},
	}

	fields := web.ParseForm(form).Fields()

	assert.Equal(t, domain.Fields{
		Name:         "Breakout",
		Description:  "desc",
		Tags:         []string{"trend", "breakout"},
		Timeframes:   []string{"1h", "4h"},
		Indicators:   []string{"EMA 20"},
		EntryRules:   []string{"rule one", "rule two"},
		ExitRules:    []string{},
		StopLossRule: "1 ATR",
		Management: domain.Management{
			TrailingStop: domain.TrailingStop{Enabled: true, Multiplier: " 2 "},
			ScaleOut:     domain.ScaleOut{Enabled: false, PercentFirst: "50"},
			DCA:          domain.Toggle{Enabled: false},
			Manual:       domain.Toggle{Enabled: true},
		},
	}, fields)
}

func TestFormFromStrategy_RoundTrip(t *testing.T) {
	s := domain.Strategy{
		ID:         "1",
		Name:       "Breakout",
		Tags:       []string{"a", "b"},
		Timeframes: []string{},
		Indicators: []string{"RSI"},
		EntryRules: []string{"one", "two"},
		ExitRules:  []string{"three"},
		Management: domain.Management{ScaleOut: domain.ScaleOut{Enabled: true, PercentFirst: "30"}},
	}

	form := web.FormFromStrategy(s)
	assert.Equal(t, "a, b", form.Tags)
	assert.Equal(t, "one\ntwo", form.EntryRules)
	assert.True(t, form.ScaleOutEnabled)

	assert.Equal(t, s.Fields(), form.Fields())
}
