// Package geo implements the planar distance estimator used by the distance
// filter and list sorting, plus coordinate reference conversions for
// datasets that ship positions in web mercator.
//
// The estimator is intentionally not great-circle-exact: at single-country
// scale (user-to-marker distances up to ~100 km) a degree-length scaled
// Euclidean approximation is monotonically consistent for ranking and
// thresholding, and far cheaper than haversine across a few thousand
// records per evaluation.
package geo

import (
	"math"
	"strconv"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/pamana/markers/internal/model"
)

// DegreeLengthKm is the kilometers-per-degree-of-latitude constant, slightly
// adjusted from the spherical 111.2 value for the latitudes involved.
const DegreeLengthKm = 110.96

// EstimateMeters returns the approximate distance in whole meters between
// the user position and a record position, using a planar Euclidean formula
// with longitude shrunk by the cosine of the user latitude.
func EstimateMeters(pos model.Position, lat, lon float64) float64 {
	x := pos.Lat - lat
	y := (pos.Lon - lon) * math.Cos(pos.Lat*math.Pi/180)
	return math.Round(DegreeLengthKm * 1000 * math.Hypot(x, y))
}

// OutsideBox is the cheap axis-aligned rejection applied before computing an
// exact estimate. The degree window is doubled to compensate for longitude
// convergence at higher latitudes, so it never rejects a point the estimator
// would accept.
func OutsideBox(pos model.Position, lat, lon float64, thresholdKm int) bool {
	maxDegreeDiff := 2 * float64(thresholdKm) / DegreeLengthKm
	if math.Abs(lat-pos.Lat) > maxDegreeDiff {
		return true
	}
	if math.Abs(lon-pos.Lon) > maxDegreeDiff {
		return true
	}
	return false
}

// Label renders a distance in meters as the rounded human-readable string
// shown in the list: exact meters up to 100 m, nearest 10 m up to 1 km,
// one-decimal kilometers up to 10 km, whole kilometers above.
func Label(meters float64) string {
	switch {
	case meters <= 100:
		return strconv.FormatFloat(math.Round(meters), 'f', -1, 64) + " m"
	case meters <= 1000:
		return strconv.FormatFloat(math.Round(meters/10)*10, 'f', -1, 64) + " m"
	case meters <= 10000:
		return strconv.FormatFloat(math.Round(meters/100)/10, 'f', -1, 64) + " km"
	default:
		return strconv.FormatFloat(math.Round(meters/1000), 'f', -1, 64) + " km"
	}
}

// HomeBoundsMin and HomeBoundsMax delimit the map view the renderer fits on
// startup before any geolocation fix arrives (the Philippine archipelago; a
// handful of overseas markers sit outside it). X is longitude and Y
// latitude, matching the dataset axis order.
var (
	HomeBoundsMin = geom.XY{X: 116.5, Y: 4.5}
	HomeBoundsMax = geom.XY{X: 126.5, Y: 21.0}
)

// InHomeBounds reports whether a position falls inside the startup map view.
func InHomeBounds(lat, lon float64) bool {
	p := geom.XY{X: lon, Y: lat}
	return p.X >= HomeBoundsMin.X && p.X <= HomeBoundsMax.X &&
		p.Y >= HomeBoundsMin.Y && p.Y <= HomeBoundsMax.Y
}

// FromWebMercator converts an EPSG:3857 position into WGS84 degrees. Used
// by the dataset loader when the dataset ships projected coordinates.
func FromWebMercator(x, y float64) (lat, lon float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	lon, lat, _ = f(x, y, 0)
	return lat, lon
}

// ToWebMercator converts WGS84 degrees into an EPSG:3857 position for
// tile-based map renderers.
func ToWebMercator(lat, lon float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(lon, lat, 0)
	return x, y
}
