// Package search implements the keyword narrowing applied on top of the
// filter results, plus the keystroke debouncer that keeps evaluation off
// the typing hot path. A query never changes record visibility; it selects
// a subset of the already-visible records for display.
package search

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/model"
)

// punctuation stripped from queries before term compilation. Periods are
// kept but matched literally.
var strippedPunctuation = `[](){}*+!<=:?/\^$|#,@`

// Query is a compiled search input: one case-insensitive matcher per
// whitespace-separated term, combined with AND.
type Query struct {
	raw   string
	terms []*regexp.Regexp
}

// Compile normalizes and compiles a raw search input. The zero-term query
// (blank or all-punctuation input) matches everything.
func Compile(raw string) Query {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, cleaned)

	q := Query{raw: raw}
	for _, term := range strings.Fields(cleaned) {
		pattern := "(?i)" + strings.ReplaceAll(term, ".", `\.`)
		re, err := regexp.Compile(pattern)
		if err != nil {
			// stripping removed every metacharacter regexp knows, so
			// this cannot happen for real input; skip the term anyway
			continue
		}
		q.terms = append(q.terms, re)
	}
	return q
}

// Raw returns the original input the query was compiled from.
func (q Query) Raw() string {
	return q.raw
}

// Empty reports whether the query narrows anything at all.
func (q Query) Empty() bool {
	return len(q.terms) == 0
}

// Match tests the query against a record's name and macro address. Every
// term must appear somewhere in the combined text.
func (q Query) Match(rec *model.MarkerRecord) bool {
	if len(q.terms) == 0 {
		return true
	}
	text := rec.Name + " " + rec.MacroAddress
	for _, term := range q.terms {
		if !term.MatchString(text) {
			return false
		}
	}
	return true
}

// Result reports which visible records matched, for the "X of Y" count.
type Result struct {
	MatchingIDs  []string
	VisibleCount int
}

// Execute runs the query over the catalog's currently visible records in
// catalog order.
func Execute(store *catalog.Store, q Query) Result {
	result := Result{}
	for _, rec := range store.All() {
		if !rec.Visible {
			continue
		}
		result.VisibleCount++
		if q.Match(rec) {
			result.MatchingIDs = append(result.MatchingIDs, rec.ID)
		}
	}
	return result
}

// Debouncer coalesces rapid inputs into a single delayed callback carrying
// the latest value. The callback runs on a timer goroutine; callers that
// need loop affinity post from inside it.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	run   func(string)
}

func NewDebouncer(delay time.Duration, run func(string)) *Debouncer {
	return &Debouncer{delay: delay, run: run}
}

// Input schedules the callback for the given value, replacing any pending
// schedule. Only the last value before the delay elapses is delivered.
func (d *Debouncer) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.run(value)
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
