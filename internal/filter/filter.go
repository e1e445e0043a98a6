// Package filter decides which catalog records are visible under the
// current filter configuration. Evaluation is a full pass over the catalog
// that rewrites each record's Visible flag; distance values are computed
// lazily and cached on the record, with a cheap bounding-box rejection in
// front of the trigonometry.
package filter

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/geo"
	"github.com/pamana/markers/internal/model"
)

// Outcome classifies an evaluation's result for the empty-state message.
type Outcome int

const (
	// HasMatches means at least one record is visible.
	HasMatches Outcome = iota
	// NoMatches means nothing is visible.
	NoMatches
	// NoMatchesToday means nothing is visible and the on-this-day filter
	// is active, so the emptiness is date-driven.
	NoMatchesToday
)

// Result is the product of one evaluation pass.
type Result struct {
	VisibleIDs []string
	Outcome    Outcome
}

var monthsEN = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var monthsTL = []string{
	"Ene", "Peb", "Mar", "Abr", "May", "Hun",
	"Hul", "Ago", "Set", "Okt", "Nob", "Dis",
}

// OnThisDayPattern compiles the date-mention matcher for the given day.
// It recognizes the three phrasings that appear on plaques: the English
// "17 February" order, the Filipino formal "ika-17 ng Pebrero", and the
// "February 17" order used by older inscriptions. Month names are matched
// by their three-letter stem so any suffix form qualifies.
func OnThisDayPattern(today time.Time) *regexp.Regexp {
	day := today.Day()
	en := monthsEN[today.Month()-1]
	tl := monthsTL[today.Month()-1]
	pattern := fmt.Sprintf(
		`\b%d (%s|%s)|ika-%d ng %s|(%s|%s)[a-z]* %d\b`,
		day, en, tl, day, tl, en, tl, day)
	return regexp.MustCompile(pattern)
}

// Engine evaluates filter configurations against the catalog.
type Engine struct {
	logger zerolog.Logger
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger.With().Str("component", "filter").Logger()}
}

// Evaluate rewrites every record's Visible flag for the given config and
// returns the visible ids in catalog order. pos may be nil; a distance
// filter without a position passes every record, since the session
// triggers geolocation and re-evaluates once a fix arrives.
func (e *Engine) Evaluate(store *catalog.Store, cfg model.FilterConfig, pos *model.Position, today time.Time) Result {
	var pattern *regexp.Regexp
	if cfg.OnThisDay {
		pattern = OnThisDayPattern(today)
	}

	result := Result{}
	for _, rec := range store.All() {
		visible := matches(rec, cfg, pos, pattern)
		rec.Visible = visible
		if visible {
			result.VisibleIDs = append(result.VisibleIDs, rec.ID)
		}
	}

	if len(result.VisibleIDs) == 0 {
		if cfg.OnThisDay {
			result.Outcome = NoMatchesToday
		} else {
			result.Outcome = NoMatches
		}
	}

	e.logger.Debug().
		Int("visible", len(result.VisibleIDs)).
		Int("total", store.Len()).
		Msg("Filters evaluated")
	return result
}

// Matches reports whether a single record passes the config. Used for the
// incremental re-check after a status toggle, where a full pass would be
// wasteful.
func Matches(rec *model.MarkerRecord, cfg model.FilterConfig, pos *model.Position, today time.Time) bool {
	var pattern *regexp.Regexp
	if cfg.OnThisDay {
		pattern = OnThisDayPattern(today)
	}
	return matches(rec, cfg, pos, pattern)
}

func matches(rec *model.MarkerRecord, cfg model.FilterConfig, pos *model.Position, onThisDay *regexp.Regexp) bool {
	if !triStateMatch(cfg.Visited, rec.Visited) {
		return false
	}
	if !triStateMatch(cfg.Bookmarked, rec.Bookmarked) {
		return false
	}
	if cfg.Region != nil && !rec.InRegion(*cfg.Region) {
		return false
	}
	if cfg.DistanceKm != nil && pos != nil {
		if !withinDistance(rec, *pos, *cfg.DistanceKm) {
			return false
		}
	}
	if onThisDay != nil && !onThisDay.MatchString(rec.FlatSearchText) {
		return false
	}
	return true
}

func triStateMatch(want model.TriState, have bool) bool {
	switch want {
	case model.Yes:
		return have
	case model.No:
		return !have
	default:
		return true
	}
}

// withinDistance caches the computed meters on the record. Records outside
// the bounding box are rejected without computing or caching anything.
func withinDistance(rec *model.MarkerRecord, pos model.Position, thresholdKm int) bool {
	if rec.Distance == nil {
		if geo.OutsideBox(pos, rec.Lat, rec.Lon, thresholdKm) {
			return false
		}
		meters := geo.EstimateMeters(pos, rec.Lat, rec.Lon)
		rec.Distance = &meters
	}
	return *rec.Distance <= float64(thresholdKm)*1000
}
