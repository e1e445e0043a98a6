package view

import (
	"testing"
	"time"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/filter"
	"github.com/pamana/markers/internal/geo"
	"github.com/pamana/markers/internal/model"
	"github.com/pamana/markers/internal/search"
	memorystorage "github.com/pamana/markers/internal/storage/memory"
)

type fakeCluster struct {
	markers  []any
	removed  []any
	focused  any
	position *model.Position
	bounds   []geom.XY
}

func (c *fakeCluster) SetMarkers(markers []any)        { c.markers = markers }
func (c *fakeCluster) RemoveMarkers(markers []any)     { c.removed = append(c.removed, markers...) }
func (c *fakeCluster) Focus(marker any)                { c.focused = marker }
func (c *fakeCluster) ShowPosition(pos model.Position) { c.position = &pos }
func (c *fakeCluster) FitBounds(min, max geom.XY)      { c.bounds = []geom.XY{min, max} }

type fakeList struct {
	visible   map[any]bool
	labels    map[any]string
	order     []any
	statuses  map[any]model.Status
	searchMsg string
}

func newFakeList() *fakeList {
	return &fakeList{
		visible:  make(map[any]bool),
		labels:   make(map[any]string),
		statuses: make(map[any]model.Status),
	}
}

func (l *fakeList) SetItemVisible(item any, visible bool)   { l.visible[item] = visible }
func (l *fakeList) SetDistanceLabel(item any, label string) { l.labels[item] = label }
func (l *fakeList) SetOrder(items []any)                    { l.order = items }
func (l *fakeList) SetStatus(item any, status model.Status) { l.statuses[item] = status }
func (l *fakeList) SetSearchMessage(msg string)             { l.searchMsg = msg }

type fakePopup struct {
	statuses map[any]model.Status
}

func (p *fakePopup) SetStatus(popup any, status model.Status) {
	if p.statuses == nil {
		p.statuses = make(map[any]model.Status)
	}
	p.statuses[popup] = status
}

type fakeNotifier struct {
	toasts  []string
	alerts  []string
	retries []func()
}

func (n *fakeNotifier) Toast(msg string)    { n.toasts = append(n.toasts, msg) }
func (n *fakeNotifier) Alert(_, msg string) { n.alerts = append(n.alerts, msg) }

func (n *fakeNotifier) AlertWithRetry(msg string, retry func()) {
	n.alerts = append(n.alerts, msg)
	n.retries = append(n.retries, retry)
}

type fixture struct {
	store    *catalog.Store
	cluster  *fakeCluster
	list     *fakeList
	popup    *fakePopup
	notifier *fakeNotifier
	coord    *Coordinator
	engine   *filter.Engine
}

func newFixture(t *testing.T, records []*model.MarkerRecord) *fixture {
	t.Helper()
	for _, rec := range records {
		rec.Handles = model.Handles{
			MapMarker: "map:" + rec.ID,
			ListItem:  "list:" + rec.ID,
			Popup:     "popup:" + rec.ID,
		}
	}
	store, err := catalog.New(records, memorystorage.New(), zerolog.Nop())
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		cluster:  &fakeCluster{},
		list:     newFakeList(),
		popup:    &fakePopup{},
		notifier: &fakeNotifier{},
		engine:   filter.NewEngine(zerolog.Nop()),
	}
	f.coord = NewCoordinator(store, f.cluster, f.list, f.popup, f.notifier, zerolog.Nop())
	return f
}

func (f *fixture) apply(cfg model.FilterConfig, pos *model.Position) filter.Result {
	result := f.engine.Evaluate(f.store, cfg, pos, time.Now())
	f.coord.Apply(result, cfg, pos, time.Now(), false)
	return result
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestApplySynchronizesSurfaces(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Barasoain Church", Visited: true},
		{ID: "b", Name: "Aguinaldo Shrine"},
	})

	cfg := model.DefaultFilterConfig()
	cfg.Visited = model.Yes
	f.apply(cfg, nil)

	assert.Equal(t, []any{"map:a"}, f.cluster.markers)
	assert.True(t, f.list.visible["list:a"])
	assert.False(t, f.list.visible["list:b"])
	assert.Equal(t, []any{"list:a"}, f.list.order)
}

func TestApplySortsByName(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Fort Santiago"},
		{ID: "b", Name: "Aguinaldo Shrine"},
		{ID: "c", Name: "Barasoain Church"},
	})

	f.apply(model.DefaultFilterConfig(), nil)
	assert.Equal(t, []any{"list:b", "list:c", "list:a"}, f.list.order)
}

func TestApplySortsByDistance(t *testing.T) {
	// user between the three markers: b closest, then a, then c
	pos := &model.Position{Lat: 14.5906, Lon: 120.9736}
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Alpha", Lat: 14.6000, Lon: 120.9800},
		{ID: "b", Name: "Bravo", Lat: 14.5910, Lon: 120.9740},
		{ID: "c", Name: "Charlie", Lat: 14.6500, Lon: 121.0300},
	})

	cfg := model.DefaultFilterConfig()
	cfg.DistanceKm = intPtr(20)
	f.apply(cfg, pos)

	assert.Equal(t, []any{"list:b", "list:a", "list:c"}, f.list.order)
	// every sorted visible record carries a distance label
	assert.NotEmpty(t, f.list.labels["list:b"])
	assert.NotEmpty(t, f.list.labels["list:c"])
}

func TestApplyWithoutPositionFallsBackToNameSort(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Zamora House", Lat: 14.60, Lon: 120.98},
		{ID: "b", Name: "Aguinaldo Shrine", Lat: 14.59, Lon: 120.97},
	})

	cfg := model.DefaultFilterConfig()
	cfg.DistanceKm = intPtr(20)
	f.apply(cfg, nil)
	assert.Equal(t, []any{"list:b", "list:a"}, f.list.order)
}

func TestApplyAnnouncements(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Fort Santiago"},
	})

	f.apply(model.DefaultFilterConfig(), nil)
	require.Len(t, f.notifier.toasts, 1)
	assert.Equal(t, "Now showing 1 historical marker", f.notifier.toasts[0])

	cfg := model.DefaultFilterConfig()
	cfg.Visited = model.Yes
	f.apply(cfg, nil)
	require.Len(t, f.notifier.toasts, 2)
	assert.Equal(t, "No historical markers match the filters", f.notifier.toasts[1])
}

func TestApplySuppressToast(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Fort Santiago"},
	})

	cfg := model.DefaultFilterConfig()
	result := f.engine.Evaluate(f.store, cfg, nil, time.Now())
	f.coord.Apply(result, cfg, nil, time.Now(), true)
	assert.Empty(t, f.notifier.toasts)

	// the empty-result message is never suppressed
	cfg.Visited = model.Yes
	result = f.engine.Evaluate(f.store, cfg, nil, time.Now())
	f.coord.Apply(result, cfg, nil, time.Now(), true)
	assert.Len(t, f.notifier.toasts, 1)
}

func TestApplyOnThisDayAlerts(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Memorare", FlatSearchText: "executed on 17 February 1872"},
	})
	today := time.Date(2026, time.February, 17, 9, 0, 0, 0, time.UTC)

	cfg := model.DefaultFilterConfig()
	cfg.OnThisDay = true
	result := f.engine.Evaluate(f.store, cfg, nil, today)
	f.coord.Apply(result, cfg, nil, today, false)

	require.Len(t, f.notifier.alerts, 1)
	assert.Equal(t,
		"On this day, there is 1 relevant historical marker for you to explore!",
		f.notifier.alerts[0])

	// nothing relevant the next day
	tomorrow := today.AddDate(0, 0, 1)
	result = f.engine.Evaluate(f.store, cfg, nil, tomorrow)
	f.coord.Apply(result, cfg, nil, tomorrow, false)
	require.Len(t, f.notifier.alerts, 2)
	assert.Equal(t,
		"Sadly, there are no relevant historical markers today. ☹️",
		f.notifier.alerts[1])
}

func TestEmptyMessageMentionsFilters(t *testing.T) {
	cfg := model.DefaultFilterConfig()
	cfg.OnThisDay = true
	cfg.Visited = model.Yes
	assert.Equal(t,
		"Sadly, there are no relevant historical markers today that match your current filters. ☹️",
		EmptyMessage(filter.NoMatchesToday, cfg))
}

func TestApplySearchNarrowsList(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Rizal Monument", MacroAddress: "Manila"},
		{ID: "b", Name: "Rizal Shrine", MacroAddress: "Calamba"},
		{ID: "c", Name: "Aguinaldo Shrine", MacroAddress: "Kawit"},
	})
	f.apply(model.DefaultFilterConfig(), nil)

	query := search.Compile("rizal")
	result := search.Execute(f.store, query)
	f.coord.ApplySearch(result, query)

	assert.True(t, f.list.visible["list:a"])
	assert.True(t, f.list.visible["list:b"])
	assert.False(t, f.list.visible["list:c"])
	// the map keeps the full visible set
	assert.Len(t, f.cluster.markers, 3)
	assert.Equal(t, "Showing 2 results out of 3", f.list.searchMsg)

	query = search.Compile("bonifacio")
	result = search.Execute(f.store, query)
	f.coord.ApplySearch(result, query)
	assert.Equal(t, "No results", f.list.searchMsg)

	query = search.Compile("")
	result = search.Execute(f.store, query)
	f.coord.ApplySearch(result, query)
	assert.Empty(t, f.list.searchMsg)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Fort Santiago"},
	})

	require.NoError(t, f.store.SetStatus("a", boolPtr(true), nil))
	f.coord.SetStatus(f.store.Get("a"))

	want := model.Status{Visited: true}
	assert.Equal(t, want, f.list.statuses["list:a"])
	assert.Equal(t, want, f.popup.statuses["popup:a"])
}

func TestReconcileAfterDetailHidesOnly(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Fort Santiago"},
		{ID: "b", Name: "Barasoain Church", Visited: true},
	})

	// showing unvisited markers only
	cfg := model.DefaultFilterConfig()
	cfg.Visited = model.No
	f.apply(cfg, nil)
	assert.True(t, f.store.Get("a").Visible)
	assert.False(t, f.store.Get("b").Visible)

	// in the detail view the user marks a visited and b unvisited
	require.NoError(t, f.store.SetStatus("a", boolPtr(true), nil))
	require.NoError(t, f.store.SetStatus("b", boolPtr(false), nil))

	f.coord.ReconcileAfterDetail(cfg, nil, time.Now())

	// a no longer matches and is hidden; b now matches but stays hidden
	// until the next full evaluation
	assert.False(t, f.store.Get("a").Visible)
	assert.False(t, f.list.visible["list:a"])
	assert.Equal(t, []any{"map:a"}, f.cluster.removed)
	assert.False(t, f.store.Get("b").Visible)
}

func TestShowOnMap(t *testing.T) {
	f := newFixture(t, []*model.MarkerRecord{
		{ID: "a", Name: "Fort Santiago"},
	})
	f.coord.ShowOnMap(f.store.Get("a"))
	assert.Equal(t, "map:a", f.cluster.focused)
}

func TestNotifyPositionFailedCarriesRetry(t *testing.T) {
	f := newFixture(t, nil)

	retried := false
	f.coord.NotifyPositionFailed(func() { retried = true })

	assert.Equal(t, []string{"Cannot get GPS location"}, f.notifier.alerts)
	require.Len(t, f.notifier.retries, 1)
	f.notifier.retries[0]()
	assert.True(t, retried)
}

func TestNotifyStatusSaved(t *testing.T) {
	f := newFixture(t, nil)

	f.coord.NotifyStatusSaved(boolPtr(true), nil)
	f.coord.NotifyStatusSaved(nil, boolPtr(true))
	f.coord.NotifyStatusSaved(boolPtr(false), boolPtr(false))

	assert.Equal(t, []string{
		"Marked as visited",
		"Added to bookmarks",
		"Marked as not visited",
		"Removed from bookmarks",
	}, f.notifier.toasts)
}

func TestShowHomeViewFitsBounds(t *testing.T) {
	f := newFixture(t, nil)
	f.coord.ShowHomeView()
	assert.Equal(t, []geom.XY{geo.HomeBoundsMin, geo.HomeBoundsMax}, f.cluster.bounds)
}
