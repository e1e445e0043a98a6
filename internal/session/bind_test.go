package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pamana/markers/internal/model"
)

func TestParseFilterArgs(t *testing.T) {
	cfg, err := parseFilterArgs([]string{"yes", "", "Ilocos Region", "10", "true"})
	require.NoError(t, err)
	assert.Equal(t, model.Yes, cfg.Visited)
	assert.Equal(t, model.Any, cfg.Bookmarked)
	require.NotNil(t, cfg.Region)
	assert.Equal(t, "Ilocos Region", *cfg.Region)
	require.NotNil(t, cfg.DistanceKm)
	assert.Equal(t, 10, *cfg.DistanceKm)
	assert.True(t, cfg.OnThisDay)

	cfg, err = parseFilterArgs([]string{"", "", "", "", ""})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultFilterConfig(), cfg)
}

func TestParseFilterArgsRejectsBadValues(t *testing.T) {
	tests := [][]string{
		{"yes", "no"},                          // wrong arity
		{"maybe", "", "", "", ""},              // bad tri-state
		{"", "sometimes", "", "", ""},          // bad tri-state
		{"", "", "", "3", ""},                  // not a distance choice
		{"", "", "", "ten", ""},                // not a number
		{"", "", "", "", "definitely"},         // not a bool
	}
	for _, args := range tests {
		_, err := parseFilterArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}
