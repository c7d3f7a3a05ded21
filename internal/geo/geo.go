// Package geo filters and orders search results by great-circle distance.
package geo

import (
	"math"
	"sort"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

const (
	SortTime     = "time"
	SortDistance = "distance"
)

type Point struct {
	Lat, Lng float64
}

// Valid reports whether p is a finite coordinate on the globe.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Box is a latitude/longitude rectangle. When MinLng > MaxLng the box
// wraps across the antimeridian.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a box containing every point within radiusKm of
// origin. Near the poles, or for radii wide enough to span the globe, the
// longitude band covers all of [-180, 180].
func BoundingBox(origin Point, radiusKm float64) Box {
	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi
	b := Box{
		MinLat: math.Max(-90, origin.Lat-dLat),
		MaxLat: math.Min(90, origin.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}
	if b.MinLat <= -90 || b.MaxLat >= 90 {
		return b
	}

	// Widest longitude offset of the circle, reached at latitude asin(sin(lat)/cos(r)).
	r := radiusKm / EarthRadiusKm
	ratio := math.Sin(r) / math.Cos(origin.Lat*math.Pi/180)
	if ratio >= 1 {
		return b
	}
	dLng := math.Asin(ratio) * 180 / math.Pi
	b.MinLng = origin.Lng - dLng
	b.MaxLng = origin.Lng + dLng
	if b.MinLng < -180 {
		b.MinLng += 360
	}
	if b.MaxLng > 180 {
		b.MaxLng -= 360
	}
	return b
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Annotate fills DistanceKm for every event with coordinates and drops
// events outside radiusKm when radiusKm > 0. Events without coordinates
// are dropped by a radius filter and kept otherwise.
func Annotate(events []model.Event, origin Point, radiusKm float64) []model.Event {
	out := events[:0]
	for _, ev := range events {
		if !ev.HasCoordinates() {
			if radiusKm > 0 {
				continue
			}
			ev.DistanceKm = nil
			out = append(out, ev)
			continue
		}
		d := Haversine(origin, Point{Lat: *ev.Latitude, Lng: *ev.Longitude})
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		ev.DistanceKm = &d
		out = append(out, ev)
	}
	return out
}

// Sort orders events in place. SortTime orders by start time and only
// uses distance to break ties between equal start times. SortDistance
// orders by distance with start time as the tie breaker, and events
// without a distance come last.
func Sort(events []model.Event, mode string) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if mode == SortDistance {
			if c := compareDistance(a, b); c != 0 {
				return c < 0
			}
			return a.StartsAt.Before(b.StartsAt)
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.Before(b.StartsAt)
		}
		return compareDistance(a, b) < 0
	})
}

func compareDistance(a, b model.Event) int {
	switch {
	case a.DistanceKm == nil && b.DistanceKm == nil:
		return 0
	case a.DistanceKm == nil:
		return 1
	case b.DistanceKm == nil:
		return -1
	case *a.DistanceKm < *b.DistanceKm:
		return -1
	case *a.DistanceKm > *b.DistanceKm:
		return 1
	}
	return 0
}
