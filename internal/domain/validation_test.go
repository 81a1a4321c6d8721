package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_strategy_manager/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{name: "plain name", input: "Breakout"},
		{name: "surrounding whitespace is trimmed", input: "  Breakout  "},
		{name: "exactly max length", input: strings.Repeat("a", domain.MaxNameLength)},
		{name: "max length after trim", input: " " + strings.Repeat("a", domain.MaxNameLength) + " "},
		{name: "multibyte counted as characters", input: strings.Repeat("é", domain.MaxNameLength)},
		{name: "empty", input: "", reason: "name required"},
		{name: "whitespace only", input: " \t\n ", reason: "name required"},
		{name: "too long", input: strings.Repeat("a", domain.MaxNameLength+1), reason: "name too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.Validate(domain.Fields{Name: tt.input})
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "name", verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

func TestValidate_OtherFieldsOptional(t *testing.T) {
	err := domain.Validate(domain.Fields{Name: "Only a name"})
	assert.NoError(t, err)
}

func TestStrategy_CloneIsDeep(t *testing.T) {
	s := domain.Strategy{ID: "1", Name: "x", Tags: []string{"a", "b"}}
	c := s.Clone()
	c.Tags[0] = "changed"

	assert.Equal(t, "a", s.Tags[0])
}

func TestStrategy_ApplyKeepsIdentity(t *testing.T) {
	s := domain.Strategy{ID: "1", Meta: domain.Meta{Version: 3}}
	s.Apply(domain.Fields{Name: "  Scalper ", Tags: nil})

	assert.Equal(t, "1", s.ID)
	assert.Equal(t, 3, s.Meta.Version)
	assert.Equal(t, "Scalper", s.Name)
	assert.NotNil(t, s.Tags)
	assert.Empty(t, s.Tags)
}
