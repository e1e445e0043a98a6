// Package session wires the catalog, filters, search, geolocation and the
// view surfaces into one interactive unit. All state lives behind a single
// Loop; the exported operations post themselves onto it, so the embedding
// frontend may call them from any goroutine.
package session

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/config"
	"github.com/pamana/markers/internal/filter"
	"github.com/pamana/markers/internal/geo"
	"github.com/pamana/markers/internal/geoloc"
	"github.com/pamana/markers/internal/model"
	"github.com/pamana/markers/internal/search"
	"github.com/pamana/markers/internal/storage"
	"github.com/pamana/markers/internal/view"
)

// Metrics receives usage measurements. Implemented by influx.Manager; the
// no-op implementation serves sessions without a metrics sink.
type Metrics interface {
	RecordInit(records int, took time.Duration)
	RecordEvaluation(visible, total int, took time.Duration)
	RecordSearch(matches, visible int)
	RecordGeolocation(outcome string, took time.Duration)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) RecordInit(int, time.Duration)            {}
func (NopMetrics) RecordEvaluation(int, int, time.Duration) {}
func (NopMetrics) RecordSearch(int, int)                    {}
func (NopMetrics) RecordGeolocation(string, time.Duration)  {}

// HandleFactory mints the per-record view handles during initialization.
// Implemented by the embedding frontend.
type HandleFactory interface {
	CreateHandles(rec *model.MarkerRecord) model.Handles
}

// Events are the session's outbound notifications, fired on the loop.
// Unset fields are skipped.
type Events struct {
	OnInitProgress      func(done, total int)
	OnInitFinished      func()
	OnVisibilityChanged func(visible, total int)
	OnStatusChanged     func(id string, status model.Status)
}

// Session is the in-memory heart of the application. One per process
// lifetime; created stopped, brought up by Start.
type Session struct {
	loop    *Loop
	store   *catalog.Store
	engine  *filter.Engine
	coord   *view.Coordinator
	locator *geoloc.Controller
	prefs   storage.Store
	factory HandleFactory
	metrics Metrics
	events  Events
	logger  zerolog.Logger

	explore config.ExploreConfig
	now     func() time.Time

	cfg       model.FilterConfig
	pos       *model.Position
	query     search.Query
	debouncer *search.Debouncer

	started     bool
	initialized bool
}

// Options collects the session's collaborators.
type Options struct {
	Loop    *Loop
	Store   *catalog.Store
	Engine  *filter.Engine
	View    *view.Coordinator
	Locator *geoloc.Controller
	Prefs   storage.Store
	Factory HandleFactory
	Metrics Metrics
	Events  Events
	Explore config.ExploreConfig
	Logger  zerolog.Logger

	// Now overrides the clock, for the on-this-day filter.
	Now func() time.Time
}

func New(opts Options) *Session {
	s := &Session{
		loop:    opts.Loop,
		store:   opts.Store,
		engine:  opts.Engine,
		coord:   opts.View,
		locator: opts.Locator,
		prefs:   opts.Prefs,
		factory: opts.Factory,
		metrics: opts.Metrics,
		events:  opts.Events,
		explore: opts.Explore,
		logger:  opts.Logger.With().Str("component", "session").Logger(),
		cfg:     model.DefaultFilterConfig(),
		now:     opts.Now,
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.debouncer = search.NewDebouncer(s.explore.SearchDelay, func(raw string) {
		s.loop.Post(func() { s.executeSearch(raw) })
	})
	return s
}

// Start restores the persisted filters and begins the chunked
// initialization. Calling it again is a no-op.
func (s *Session) Start() {
	s.loop.Post(func() {
		if s.started {
			s.logger.Debug().Msg("Start ignored, session already started")
			return
		}
		s.started = true
		s.recordFirstOpen()
		s.restoreFilters()
		s.beginInit()
	})
}

// SetFilters replaces the filter configuration. A change resets the
// search, persists the new values, and re-evaluates; setting the distance
// filter before a position is known triggers geolocation.
func (s *Session) SetFilters(cfg model.FilterConfig) {
	s.loop.Post(func() { s.setFilters(cfg) })
}

// SetSearchQuery feeds one keystroke's worth of input to the debouncer.
func (s *Session) SetSearchQuery(raw string) {
	s.debouncer.Input(raw)
}

// Geolocate requests a one-shot position fix.
func (s *Session) Geolocate() {
	s.loop.Post(func() { s.geolocate() })
}

// SetStatus updates a record's visited/bookmarked flags. Nil leaves a
// flag unchanged.
func (s *Session) SetStatus(id string, visited, bookmarked *bool) {
	s.loop.Post(func() {
		rec := s.store.Get(id)
		before := rec.Status()
		if err := s.store.SetStatus(id, visited, bookmarked); err != nil {
			s.logger.Error().Err(err).Str("id", id).Msg("Error persisting status")
			return
		}
		after := rec.Status()
		if after == before {
			return
		}
		s.coord.SetStatus(rec)
		var visitedChange, bookmarkedChange *bool
		if after.Visited != before.Visited {
			visitedChange = &after.Visited
		}
		if after.Bookmarked != before.Bookmarked {
			bookmarkedChange = &after.Bookmarked
		}
		s.coord.NotifyStatusSaved(visitedChange, bookmarkedChange)
		if s.events.OnStatusChanged != nil {
			s.events.OnStatusChanged(id, after)
		}
	})
}

// ReturnFromDetail runs the hide-only reconcile for records whose status
// changed while the detail view was open.
func (s *Session) ReturnFromDetail() {
	s.loop.Post(func() {
		s.coord.ReconcileAfterDetail(s.cfg, s.pos, s.now())
	})
}

// ShowOnMap focuses the map on a record.
func (s *Session) ShowOnMap(id string) {
	s.loop.Post(func() {
		s.coord.ShowOnMap(s.store.Get(id))
	})
}

// Filters returns a snapshot of the active configuration.
func (s *Session) Filters() model.FilterConfig {
	var cfg model.FilterConfig
	done := make(chan struct{})
	s.loop.Post(func() {
		cfg = s.cfg
		close(done)
	})
	<-done
	return cfg
}

func (s *Session) setFilters(cfg model.FilterConfig) {
	if filterConfigsEqual(cfg, s.cfg) {
		return
	}
	s.cfg = cfg
	s.persistFilters()

	// a filter change always resets the search
	s.debouncer.Cancel()
	s.query = search.Compile("")

	s.evaluate(false)

	if cfg.DistanceKm != nil && s.pos == nil {
		s.geolocate()
	}
}

func (s *Session) geolocate() {
	started := time.Now()
	acquiring := s.locator.Request(geoloc.Callbacks{
		OnPosition: func(pos model.Position) {
			s.metrics.RecordGeolocation("success", time.Since(started))
			if !geo.InHomeBounds(pos.Lat, pos.Lon) {
				s.logger.Warn().
					Float64("lat", pos.Lat).
					Float64("lon", pos.Lon).
					Msg("Position fix outside the home map view")
			}
			s.pos = &pos
			s.store.InvalidateDistances()
			s.coord.ShowPosition(pos)
			s.evaluate(false)
		},
		OnFailure: func(err error) {
			if err == geoloc.ErrUnavailable {
				s.metrics.RecordGeolocation("unavailable", time.Since(started))
				return
			}
			s.metrics.RecordGeolocation("failure", time.Since(started))
			s.coord.NotifyPositionFailed(s.Geolocate)
		},
		OnNotice: s.coord.NotifyPositioningOff,
	})
	if acquiring {
		s.coord.NotifyAcquiring()
	}
}

// evaluate runs the full filter pass, pushes it to the surfaces, and
// re-applies the active search on top.
func (s *Session) evaluate(suppressToast bool) {
	started := time.Now()
	today := s.now()

	result := s.engine.Evaluate(s.store, s.cfg, s.pos, today)
	s.coord.Apply(result, s.cfg, s.pos, today, suppressToast)
	s.applySearch()

	s.metrics.RecordEvaluation(len(result.VisibleIDs), s.store.Len(), time.Since(started))
	if s.events.OnVisibilityChanged != nil {
		s.events.OnVisibilityChanged(len(result.VisibleIDs), s.store.Len())
	}
}

func (s *Session) executeSearch(raw string) {
	s.query = search.Compile(raw)
	result := s.applySearch()
	s.metrics.RecordSearch(len(result.MatchingIDs), result.VisibleCount)
}

func (s *Session) applySearch() search.Result {
	result := search.Execute(s.store, s.query)
	s.coord.ApplySearch(result, s.query)
	return result
}

// recordFirstOpen stamps the very first session start; later starts leave
// the stored timestamp alone.
func (s *Session) recordFirstOpen() {
	if _, ok, err := s.prefs.LoadPreference(storage.PrefFirstOpen); err != nil || ok {
		return
	}
	s.savePreference(storage.PrefFirstOpen, s.now().Format(time.RFC3339))
}

// restoreFilters rebuilds the filter configuration from the preference
// store. Unknown or malformed values fall back to the defaults.
func (s *Session) restoreFilters() {
	cfg := model.DefaultFilterConfig()

	if v, ok, err := s.prefs.LoadPreference(storage.PrefVisitedFilter); err == nil && ok {
		if t := model.TriState(v); t == model.Yes || t == model.No {
			cfg.Visited = t
		}
	}
	if v, ok, err := s.prefs.LoadPreference(storage.PrefBookmarkedFilter); err == nil && ok {
		if t := model.TriState(v); t == model.Yes || t == model.No {
			cfg.Bookmarked = t
		}
	}
	if v, ok, err := s.prefs.LoadPreference(storage.PrefRegionFilter); err == nil && ok && v != "" {
		cfg.Region = &v
	}
	if v, ok, err := s.prefs.LoadPreference(storage.PrefDistanceFilter); err == nil && ok {
		if km, err := strconv.Atoi(v); err == nil && validDistance(km) {
			cfg.DistanceKm = &km
		}
	}

	s.cfg = cfg
}

// persistFilters mirrors the configuration into the preference store.
// Default values are deleted rather than written.
func (s *Session) persistFilters() {
	s.persistTriState(storage.PrefVisitedFilter, s.cfg.Visited)
	s.persistTriState(storage.PrefBookmarkedFilter, s.cfg.Bookmarked)

	if s.cfg.Region != nil {
		s.savePreference(storage.PrefRegionFilter, *s.cfg.Region)
	} else {
		s.deletePreference(storage.PrefRegionFilter)
	}
	if s.cfg.DistanceKm != nil {
		s.savePreference(storage.PrefDistanceFilter, strconv.Itoa(*s.cfg.DistanceKm))
	} else {
		s.deletePreference(storage.PrefDistanceFilter)
	}
}

func (s *Session) persistTriState(key string, value model.TriState) {
	if value == model.Any {
		s.deletePreference(key)
		return
	}
	s.savePreference(key, string(value))
}

func (s *Session) savePreference(key, value string) {
	if err := s.prefs.SavePreference(key, value); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error saving preference")
	}
}

func (s *Session) deletePreference(key string) {
	if err := s.prefs.DeletePreference(key); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Error deleting preference")
	}
}

func validDistance(km int) bool {
	for _, choice := range model.DistanceChoicesKm {
		if km == choice {
			return true
		}
	}
	return false
}

func filterConfigsEqual(a, b model.FilterConfig) bool {
	if a.Visited != b.Visited || a.Bookmarked != b.Bookmarked || a.OnThisDay != b.OnThisDay {
		return false
	}
	if (a.Region == nil) != (b.Region == nil) || (a.Region != nil && *a.Region != *b.Region) {
		return false
	}
	if (a.DistanceKm == nil) != (b.DistanceKm == nil) || (a.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm) {
		return false
	}
	return true
}
