package search

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/model"
	memorystorage "github.com/pamana/markers/internal/storage/memory"
)

func TestCompile(t *testing.T) {
	assert.True(t, Compile("").Empty())
	assert.True(t, Compile("   ").Empty())
	assert.True(t, Compile("()[]{}").Empty())
	assert.False(t, Compile("rizal").Empty())
	assert.Equal(t, "  rizal ", Compile("  rizal ").Raw())
}

func TestQueryMatch(t *testing.T) {
	rec := &model.MarkerRecord{
		Name:         "Gen. Gregorio del Pilar",
		MacroAddress: "Tirad Pass, Ilocos Sur",
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"pilar", true},
		{"PILAR", true},
		{"gen. pilar", true},
		{"pilar tirad", true},
		{"pilar bulacan", false},
		{"(pilar)", true},
		{"del*pilar", false}, // asterisk is stripped, leaving "delpilar"
		{"", true},
	}
	for _, tt := range tests {
		q := Compile(tt.query)
		assert.Equal(t, tt.want, q.Match(rec), "query %q", tt.query)
	}
}

func TestQueryMatchEscapesPeriods(t *testing.T) {
	rec := &model.MarkerRecord{Name: "Gen Gregorio del Pilar", MacroAddress: ""}
	// a literal period must not act as a wildcard
	assert.False(t, Compile("g.n").Match(rec))
}

func TestExecuteNarrowsWithinVisible(t *testing.T) {
	records := []*model.MarkerRecord{
		{ID: "a", Name: "Rizal Monument", MacroAddress: "Manila", Visible: true},
		{ID: "b", Name: "Rizal Shrine", MacroAddress: "Calamba", Visible: false},
		{ID: "c", Name: "Aguinaldo Shrine", MacroAddress: "Kawit", Visible: true},
	}
	store, err := catalog.New(records, memorystorage.New(), zerolog.Nop())
	require.NoError(t, err)

	result := Execute(store, Compile("rizal"))
	assert.Equal(t, []string{"a"}, result.MatchingIDs)
	assert.Equal(t, 2, result.VisibleCount)

	// the match set is always a subset of the visible set
	result = Execute(store, Compile(""))
	assert.Equal(t, []string{"a", "c"}, result.MatchingIDs)
	assert.Equal(t, 2, result.VisibleCount)
}

func TestDebouncerLastWins(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	d := NewDebouncer(30*time.Millisecond, func(value string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, value)
	})

	for _, keystroke := range []string{"r", "ri", "riz", "riza", "rizal"} {
		d.Input(keystroke)
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, "rizal", calls[0])
}

func TestDebouncerCancel(t *testing.T) {
	var mu sync.Mutex
	fired := false
	d := NewDebouncer(20*time.Millisecond, func(string) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})

	d.Input("rizal")
	d.Cancel()
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired)
}
