package geo

import (
	"math"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

func coords(lat, lng float64) (*float64, *float64) {
	return &lat, &lng
}

func TestHaversine(t *testing.T) {
	berlin := Point{Lat: 52.5200, Lng: 13.4050}
	paris := Point{Lat: 48.8566, Lng: 2.3522}

	got := Haversine(berlin, paris)
	if math.Abs(got-877.5) > 5 {
		t.Fatalf("expected roughly 877 km between Berlin and Paris, got %.1f", got)
	}
	if d := Haversine(berlin, berlin); d != 0 {
		t.Fatalf("expected zero distance to self, got %f", d)
	}
	if math.Abs(Haversine(berlin, paris)-Haversine(paris, berlin)) > 1e-9 {
		t.Fatal("expected distance to be symmetric")
	}
}

func TestAnnotateAndSortByDistance(t *testing.T) {
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	origin := Point{Lat: 52.52, Lng: 13.405}

	farLat, farLng := coords(52.40, 13.05)
	nearLat, nearLng := coords(52.53, 13.41)
	events := []model.Event{
		{ID: "nowhere", StartsAt: start},
		{ID: "far", StartsAt: start, Latitude: farLat, Longitude: farLng},
		{ID: "near", StartsAt: start.Add(time.Hour), Latitude: nearLat, Longitude: nearLng},
	}

	events = Annotate(events, origin, 0)
	Sort(events, SortDistance)

	want := []string{"near", "far", "nowhere"}
	for i, id := range want {
		if events[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, events[i].ID)
		}
	}
	if events[0].DistanceKm == nil || *events[0].DistanceKm > 2 {
		t.Fatalf("expected near event within 2 km, got %v", events[0].DistanceKm)
	}
}

func TestAnnotate_RadiusDropsFarAndUnlocated(t *testing.T) {
	origin := Point{Lat: 52.52, Lng: 13.405}
	farLat, farLng := coords(48.8566, 2.3522)
	nearLat, nearLng := coords(52.53, 13.41)
	events := []model.Event{
		{ID: "nowhere"},
		{ID: "far", Latitude: farLat, Longitude: farLng},
		{ID: "near", Latitude: nearLat, Longitude: nearLng},
	}

	events = Annotate(events, origin, 10)
	if len(events) != 1 || events[0].ID != "near" {
		t.Fatalf("expected only the near event, got %+v", events)
	}
}

func TestSortByTime_DistanceBreaksTies(t *testing.T) {
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	one, two := 1.0, 2.0
	events := []model.Event{
		{ID: "later", StartsAt: start.Add(time.Hour), DistanceKm: &one},
		{ID: "same-unlocated", StartsAt: start},
		{ID: "same-far", StartsAt: start, DistanceKm: &two},
		{ID: "same-near", StartsAt: start, DistanceKm: &one},
	}

	Sort(events, SortTime)

	want := []string{"same-near", "same-far", "same-unlocated", "later"}
	for i, id := range want {
		if events[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, events[i].ID)
		}
	}
}

func TestPointValid(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"origin", Point{0, 0}, true},
		{"corners", Point{-90, 180}, true},
		{"lat too high", Point{500, 0}, false},
		{"lng too low", Point{0, -180.5}, false},
		{"nan", Point{math.NaN(), 0}, false},
		{"inf", Point{0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Valid(); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestBoundingBox_ContainsCircle(t *testing.T) {
	origin := Point{Lat: 52.52, Lng: 13.405}
	const radius = 25.0
	box := BoundingBox(origin, radius)

	if box.MinLat >= origin.Lat || box.MaxLat <= origin.Lat || box.MinLng >= origin.Lng || box.MaxLng <= origin.Lng {
		t.Fatalf("expected box around origin, got %+v", box)
	}
	// Points on the circle must fall inside the box.
	for bearing := 0.0; bearing < 360; bearing += 5 {
		p := destination(origin, bearing, radius*0.999)
		if p.Lat < box.MinLat || p.Lat > box.MaxLat || p.Lng < box.MinLng || p.Lng > box.MaxLng {
			t.Fatalf("bearing %.0f: %+v outside %+v", bearing, p, box)
		}
	}
	if d := Haversine(origin, Point{Lat: box.MaxLat, Lng: origin.Lng}); math.Abs(d-radius) > 0.01 {
		t.Fatalf("expected north edge %v km away, got %.3f", radius, d)
	}
}

func TestBoundingBox_EdgesOfTheMap(t *testing.T) {
	wrapped := BoundingBox(Point{Lat: -17.7, Lng: 179.9}, 50)
	if wrapped.MinLng <= wrapped.MaxLng {
		t.Fatalf("expected the box to wrap the antimeridian, got %+v", wrapped)
	}
	if wrapped.MinLng < 179 || wrapped.MaxLng > -179 {
		t.Fatalf("expected a narrow wrapped band, got %+v", wrapped)
	}

	polar := BoundingBox(Point{Lat: 89.9, Lng: 0}, 50)
	if polar.MaxLat != 90 || polar.MinLng != -180 || polar.MaxLng != 180 {
		t.Fatalf("expected a polar cap box, got %+v", polar)
	}
}

// destination walks distKm from p along bearing degrees.
func destination(p Point, bearing, distKm float64) Point {
	rad := math.Pi / 180
	d := distKm / EarthRadiusKm
	lat1, lng1, brg := p.Lat*rad, p.Lng*rad, bearing*rad
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lng2 := lng1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))
	return Point{Lat: lat2 / rad, Lng: lng2 / rad}
}
