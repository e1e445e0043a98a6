// Package model defines the in-memory shapes shared by the catalog, the
// filter/search pipeline, and the view layer. Records are created once at
// dataset load time and live for the whole session; only the explicitly
// mutable fields change after that.
package model

// TriState is a three-valued filter setting for boolean record flags.
type TriState string

const (
	Any TriState = "any"
	Yes TriState = "yes"
	No  TriState = "no"
)

// DistanceChoicesKm are the selectable distance filter thresholds.
var DistanceChoicesKm = []int{1, 2, 5, 10, 20, 50, 100}

// Position is a WGS84 coordinate pair in degrees.
type Position struct {
	Lat float64
	Lon float64
}

// Status is the user-toggled per-record flag pair.
type Status struct {
	Visited    bool
	Bookmarked bool
}

// Encode serializes a status into the two-character wire format used by the
// status store ("vb", "vx", "xb", "xx").
func (s Status) Encode() string {
	b := [2]byte{'x', 'x'}
	if s.Visited {
		b[0] = 'v'
	}
	if s.Bookmarked {
		b[1] = 'b'
	}
	return string(b[:])
}

// DecodeStatus parses the two-character status wire format. Anything that is
// not a recognized flag at its position counts as false.
func DecodeStatus(raw string) Status {
	var s Status
	if len(raw) >= 1 && raw[0] == 'v' {
		s.Visited = true
	}
	if len(raw) >= 2 && raw[1] == 'b' {
		s.Bookmarked = true
	}
	return s
}

// FilterConfig holds the session-wide filter values.
type FilterConfig struct {
	Visited    TriState
	Bookmarked TriState
	Region     *string
	DistanceKm *int
	OnThisDay  bool
}

// DefaultFilterConfig returns a config that shows every record.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{Visited: Any, Bookmarked: Any}
}

// IsRestrictive reports whether any filter other than on-this-day is active.
// Used to phrase the empty-result message.
func (c FilterConfig) IsRestrictive() bool {
	return c.Visited != Any || c.Bookmarked != Any || c.Region != nil || c.DistanceKm != nil
}

// Handles are the opaque per-record view tokens created once by the
// initializer. The core never looks inside them; it only hands them back to
// the rendering collaborator.
type Handles struct {
	MapMarker any
	ListItem  any
	Popup     any
}

// MarkerRecord is one catalog entry. Identity and descriptive fields are
// immutable after load. The mutable fields each have a single writer:
// Visited/Bookmarked change only through catalog.SetStatus, Visible and
// Distance only through the filter engine (Distance is additionally reset
// to nil when the current position changes), and Handles are set once by
// the initializer.
type MarkerRecord struct {
	ID           string
	Name         string
	MacroAddress string
	Address      string
	Regions      []string
	Lat          float64
	Lon          float64

	// Date is the unveiling date: empty when unknown, a bare year like
	// "1941", or a full date. PerLanguageDate means the date differs per
	// plaque language and lives in the details entries instead.
	Date            string
	PerLanguageDate bool

	Details   Details
	Wikipedia map[string]string
	Commons   string
	LocDesc   string
	LocPhoto  *Photo

	// FlatSearchText is the concatenation of all localized title, subtitle
	// and inscription text, built once at load time for the on-this-day
	// match. Never touched afterwards.
	FlatSearchText string

	Visited    bool
	Bookmarked bool

	// Distance is the cached meters-from-user value, nil when unknown or
	// invalidated by a position change.
	Distance *float64

	// Visible is the filter engine's last verdict for this record.
	Visible bool

	Handles Handles
}

// Status returns the record's current flag pair.
func (r *MarkerRecord) Status() Status {
	return Status{Visited: r.Visited, Bookmarked: r.Bookmarked}
}

// InRegion reports whether the record belongs to the given region.
func (r *MarkerRecord) InRegion(region string) bool {
	for _, reg := range r.Regions {
		if reg == region {
			return true
		}
	}
	return false
}
