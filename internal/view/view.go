// Package view keeps the three presentation surfaces in step with the
// catalog: the clustered map, the sortable list, and the per-record popup.
// The coordinator owns the synchronization rules; the surfaces themselves
// sit behind small interfaces implemented by the embedding frontend, which
// only ever receives the opaque handles minted at initialization.
package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/filter"
	"github.com/pamana/markers/internal/geo"
	"github.com/pamana/markers/internal/model"
	"github.com/pamana/markers/internal/search"
)

// Cluster is the clustered map surface. The marker set is replaced
// wholesale on filter changes; removal is incremental only for the
// hide-only reconcile after a detail view.
type Cluster interface {
	SetMarkers(markers []any)
	RemoveMarkers(markers []any)
	Focus(marker any)
	ShowPosition(pos model.Position)
	FitBounds(min, max geom.XY)
}

// List is the sortable list surface.
type List interface {
	SetItemVisible(item any, visible bool)
	SetDistanceLabel(item any, label string)
	SetOrder(items []any)
	SetStatus(item any, status model.Status)
	SetSearchMessage(msg string)
}

// Popup is the per-record detail surface.
type Popup interface {
	SetStatus(popup any, status model.Status)
}

// Notifier shows transient messages. AlertWithRetry is dismissible and
// carries an action that re-attempts the failed operation.
type Notifier interface {
	Toast(msg string)
	Alert(title, msg string)
	AlertWithRetry(msg string, retry func())
}

// Coordinator fans catalog state out to the three surfaces.
type Coordinator struct {
	cluster  Cluster
	list     List
	popup    Popup
	notifier Notifier
	store    *catalog.Store
	logger   zerolog.Logger
}

func NewCoordinator(store *catalog.Store, cluster Cluster, list List, popup Popup, notifier Notifier, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		cluster:  cluster,
		list:     list,
		popup:    popup,
		notifier: notifier,
		store:    store,
		logger:   logger.With().Str("component", "view").Logger(),
	}
}

// Apply pushes a filter evaluation to the surfaces: the map gets exactly
// the visible markers, list items are shown or hidden, the list is
// reordered, and the outcome message is announced. suppressToast drops the
// non-empty announcement only; the empty-result message always shows.
func (v *Coordinator) Apply(result filter.Result, cfg model.FilterConfig, pos *model.Position, today time.Time, suppressToast bool) {
	var markers []any
	for _, rec := range v.store.All() {
		v.list.SetItemVisible(rec.Handles.ListItem, rec.Visible)
		if rec.Visible {
			markers = append(markers, rec.Handles.MapMarker)
		}
	}
	v.cluster.SetMarkers(markers)

	v.sortList(result.VisibleIDs, cfg, pos)
	v.updateDistanceLabels(cfg, pos)

	v.announce(len(result.VisibleIDs), result.Outcome, cfg, today, suppressToast)
}

// ApplySearch narrows the list to the matching subset of the visible
// records. The map is untouched; search only affects the list.
func (v *Coordinator) ApplySearch(result search.Result, query search.Query) {
	matching := make(map[string]bool, len(result.MatchingIDs))
	for _, id := range result.MatchingIDs {
		matching[id] = true
	}
	for _, rec := range v.store.All() {
		if !rec.Visible {
			continue
		}
		v.list.SetItemVisible(rec.Handles.ListItem, matching[rec.ID])
	}

	v.list.SetSearchMessage(SearchMessage(result, query))
}

// SetStatus pushes a record's flag pair to its list item and popup.
func (v *Coordinator) SetStatus(rec *model.MarkerRecord) {
	status := rec.Status()
	v.list.SetStatus(rec.Handles.ListItem, status)
	v.popup.SetStatus(rec.Handles.Popup, status)
}

// ReconcileAfterDetail re-checks only the records whose status changed
// while a detail view was open. Hide-only: a record that stopped matching
// disappears, but newly matching records wait for the next full pass, so
// the surfaces never gain entries the user did not just look at.
func (v *Coordinator) ReconcileAfterDetail(cfg model.FilterConfig, pos *model.Position, today time.Time) {
	var removed []any
	for _, id := range v.store.RecentlyChanged() {
		rec := v.store.Get(id)
		if !rec.Visible {
			continue
		}
		if filter.Matches(rec, cfg, pos, today) {
			continue
		}
		rec.Visible = false
		v.list.SetItemVisible(rec.Handles.ListItem, false)
		removed = append(removed, rec.Handles.MapMarker)
	}
	if len(removed) > 0 {
		v.cluster.RemoveMarkers(removed)
		v.logger.Debug().Int("removed", len(removed)).Msg("Hidden after detail view")
	}
}

// ShowOnMap focuses the map on a record's marker.
func (v *Coordinator) ShowOnMap(rec *model.MarkerRecord) {
	v.cluster.Focus(rec.Handles.MapMarker)
}

// ShowPosition marks the user's fix on the map.
func (v *Coordinator) ShowPosition(pos model.Position) {
	v.cluster.ShowPosition(pos)
}

// ShowHomeView fits the map to the home bounds, the startup view before
// any position fix arrives.
func (v *Coordinator) ShowHomeView() {
	v.cluster.FitBounds(geo.HomeBoundsMin, geo.HomeBoundsMax)
}

// NotifyAcquiring announces that a position fix is underway.
func (v *Coordinator) NotifyAcquiring() {
	v.notifier.Toast("Getting GPS location...")
}

// NotifyPositioningOff announces that positioning is switched off.
func (v *Coordinator) NotifyPositioningOff() {
	v.notifier.Toast("You need to turn GPS on first")
}

// NotifyPositionFailed announces a failed acquisition. The retry action
// re-requests a fix when the user asks for it.
func (v *Coordinator) NotifyPositionFailed(retry func()) {
	v.notifier.AlertWithRetry("Cannot get GPS location", retry)
}

// NotifyStatusSaved announces a just-applied status toggle. Nil means the
// flag did not change in this update.
func (v *Coordinator) NotifyStatusSaved(visited, bookmarked *bool) {
	if visited != nil {
		if *visited {
			v.notifier.Toast("Marked as visited")
		} else {
			v.notifier.Toast("Marked as not visited")
		}
	}
	if bookmarked != nil {
		if *bookmarked {
			v.notifier.Toast("Added to bookmarks")
		} else {
			v.notifier.Toast("Removed from bookmarks")
		}
	}
}

// sortList orders the visible list items: by distance when the distance
// filter has a position to work with, by name otherwise.
func (v *Coordinator) sortList(visibleIDs []string, cfg model.FilterConfig, pos *model.Position) {
	ids := make([]string, len(visibleIDs))
	copy(ids, visibleIDs)

	if cfg.DistanceKm != nil && pos != nil {
		sort.SliceStable(ids, func(i, j int) bool {
			return distanceOf(v.store.Get(ids[i])) < distanceOf(v.store.Get(ids[j]))
		})
	} else {
		sort.SliceStable(ids, func(i, j int) bool {
			return v.store.Get(ids[i]).Name < v.store.Get(ids[j]).Name
		})
	}

	items := make([]any, len(ids))
	for i, id := range ids {
		items[i] = v.store.Get(id).Handles.ListItem
	}
	v.list.SetOrder(items)
}

func distanceOf(rec *model.MarkerRecord) float64 {
	if rec.Distance == nil {
		// unknown sorts last
		return float64(1 << 62)
	}
	return *rec.Distance
}

func (v *Coordinator) updateDistanceLabels(cfg model.FilterConfig, pos *model.Position) {
	if cfg.DistanceKm == nil || pos == nil {
		return
	}
	for _, rec := range v.store.All() {
		if rec.Visible && rec.Distance != nil {
			v.list.SetDistanceLabel(rec.Handles.ListItem, geo.Label(*rec.Distance))
		}
	}
}

func (v *Coordinator) announce(numVisible int, outcome filter.Outcome, cfg model.FilterConfig, today time.Time, suppressToast bool) {
	if numVisible == 0 {
		msg := EmptyMessage(outcome, cfg)
		if cfg.OnThisDay {
			v.notifier.Alert(today.Format("January 2, 2006"), msg)
		} else {
			v.notifier.Toast(msg)
		}
		return
	}
	if suppressToast {
		return
	}
	msg := VisibleMessage(numVisible, cfg.OnThisDay)
	if cfg.OnThisDay {
		v.notifier.Alert(today.Format("January 2, 2006"), msg)
	} else {
		v.notifier.Toast(msg)
	}
}

// EmptyMessage phrases the no-results announcement. The on-this-day
// variant mentions the active filters when they could be the reason.
func EmptyMessage(outcome filter.Outcome, cfg model.FilterConfig) string {
	if outcome == filter.NoMatchesToday {
		suffix := ""
		if cfg.IsRestrictive() {
			suffix = " that match your current filters"
		}
		return fmt.Sprintf("Sadly, there are no relevant historical markers today%s. ☹️", suffix)
	}
	return "No historical markers match the filters"
}

// VisibleMessage phrases the showing-N announcement.
func VisibleMessage(numVisible int, onThisDay bool) string {
	markersWord := "marker"
	if numVisible > 1 {
		markersWord = "markers"
	}
	if onThisDay {
		verb := "is"
		if numVisible > 1 {
			verb = "are"
		}
		return fmt.Sprintf("On this day, there %s %d relevant historical %s for you to explore!", verb, numVisible, markersWord)
	}
	return fmt.Sprintf("Now showing %d historical %s", numVisible, markersWord)
}

// SearchMessage phrases the list's narrowing summary; empty when the
// query is blank.
func SearchMessage(result search.Result, query search.Query) string {
	if query.Empty() {
		return ""
	}
	if len(result.MatchingIDs) == 0 {
		return "No results"
	}
	n := len(result.MatchingIDs)
	resultsWord := "result"
	if n > 1 {
		resultsWord = "results"
	}
	return fmt.Sprintf("Showing %d %s out of %d", n, resultsWord, result.VisibleCount)
}
