package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/pamana/markers/internal/catalog"
	"github.com/pamana/markers/internal/model"
)

// Handle types minted for each record. The session treats them as opaque;
// only the renderer looks inside.
type mapMarker struct{ id string }
type listItem struct{ id string }
type popupRef struct{ id string }

// terminalRenderer implements the view surfaces and the handle factory on
// plain text output. It is the stand-in for a map frontend.
type terminalRenderer struct {
	out   io.Writer
	store *catalog.Store

	mu      sync.Mutex
	visible map[string]bool
	labels  map[string]string
	order   []string
}

func newTerminalRenderer(out io.Writer, store *catalog.Store) *terminalRenderer {
	return &terminalRenderer{
		out:     out,
		store:   store,
		visible: make(map[string]bool),
		labels:  make(map[string]string),
	}
}

func (r *terminalRenderer) CreateHandles(rec *model.MarkerRecord) model.Handles {
	return model.Handles{
		MapMarker: &mapMarker{id: rec.ID},
		ListItem:  &listItem{id: rec.ID},
		Popup:     &popupRef{id: rec.ID},
	}
}

// Cluster

func (r *terminalRenderer) SetMarkers(markers []any) {
	fmt.Fprintf(r.out, "[map] showing %d markers\n", len(markers))
}

func (r *terminalRenderer) RemoveMarkers(markers []any) {
	fmt.Fprintf(r.out, "[map] removed %d markers\n", len(markers))
}

func (r *terminalRenderer) Focus(marker any) {
	m, ok := marker.(*mapMarker)
	if !ok {
		return
	}
	rec := r.store.Get(m.id)
	fmt.Fprintf(r.out, "[map] centered on %s (%.4f, %.4f)\n", rec.Name, rec.Lat, rec.Lon)
	if langs := plaqueLanguages(rec); langs != "" {
		fmt.Fprintf(r.out, "[map] plaques: %s\n", langs)
	}
}

func (r *terminalRenderer) FitBounds(min, max geom.XY) {
	fmt.Fprintf(r.out, "[map] view fit to (%.1f, %.1f)-(%.1f, %.1f)\n",
		min.Y, min.X, max.Y, max.X)
}

func (r *terminalRenderer) ShowPosition(pos model.Position) {
	fmt.Fprintf(r.out, "[map] you are at (%.4f, %.4f)\n", pos.Lat, pos.Lon)
}

// List

func (r *terminalRenderer) SetItemVisible(item any, visible bool) {
	li, ok := item.(*listItem)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible[li.id] = visible
}

func (r *terminalRenderer) SetDistanceLabel(item any, label string) {
	li, ok := item.(*listItem)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[li.id] = label
}

func (r *terminalRenderer) SetOrder(items []any) {
	r.mu.Lock()
	r.order = r.order[:0]
	for _, item := range items {
		if li, ok := item.(*listItem); ok {
			r.order = append(r.order, li.id)
		}
	}
	r.mu.Unlock()
	r.printList()
}

// SetStatus serves both the list and popup surfaces; the handle type
// says which one is being updated.
func (r *terminalRenderer) SetStatus(handle any, status model.Status) {
	switch h := handle.(type) {
	case *listItem:
		fmt.Fprintf(r.out, "[list] %s is now %s\n", r.store.Get(h.id).Name, statusText(status))
	case *popupRef:
		fmt.Fprintf(r.out, "[popup] %s: %s\n", r.store.Get(h.id).Name, statusText(status))
	}
}

func (r *terminalRenderer) SetSearchMessage(msg string) {
	if msg != "" {
		fmt.Fprintf(r.out, "[list] %s\n", msg)
	}
}

// printList shows the first few visible entries so long result sets do
// not flood the terminal.
func (r *terminalRenderer) printList() {
	const maxShown = 10

	r.mu.Lock()
	defer r.mu.Unlock()

	shown := 0
	for _, id := range r.order {
		if !r.visible[id] {
			continue
		}
		if shown == maxShown {
			fmt.Fprintln(r.out, "  ...")
			break
		}
		rec := r.store.Get(id)
		line := fmt.Sprintf("  %2d. %s", shown+1, rec.Name)
		if label := r.labels[id]; label != "" {
			line += " (" + label + ")"
		}
		fmt.Fprintln(r.out, line)
		shown++
	}
}

// Notifier

func (r *terminalRenderer) Toast(msg string) {
	fmt.Fprintf(r.out, "-- %s\n", msg)
}

func (r *terminalRenderer) Alert(title, msg string) {
	fmt.Fprintf(r.out, "== %s ==\n%s\n", title, msg)
}

// AlertWithRetry points at the locate command instead of keeping the
// action around; on a terminal re-running the command is the retry.
func (r *terminalRenderer) AlertWithRetry(msg string, _ func()) {
	fmt.Fprintf(r.out, "!! %s (type 'locate' to retry)\n", msg)
}

// plaqueLanguages names a record's plaque languages for the popup line,
// falling back to the raw code for languages without a known name.
func plaqueLanguages(rec *model.MarkerRecord) string {
	var names []string
	for _, code := range rec.Details.Languages() {
		if name, ok := model.LanguageName[code]; ok {
			names = append(names, name)
		} else {
			names = append(names, code)
		}
	}
	return strings.Join(names, ", ")
}

func statusText(status model.Status) string {
	switch {
	case status.Visited && status.Bookmarked:
		return "visited, bookmarked"
	case status.Visited:
		return "visited"
	case status.Bookmarked:
		return "bookmarked"
	default:
		return "unvisited"
	}
}
