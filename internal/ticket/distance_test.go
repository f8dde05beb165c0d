package ticket

import (
	"math"
	"testing"
)

func TestHaversineZero(t *testing.T) {
	if d := Haversine(-23.5, -46.6, -23.5, -46.6); d != 0 {
		t.Fatalf("distance to itself = %f, want 0", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(-23.5, -46.6, -22.9, -43.2)
	b := Haversine(-22.9, -43.2, -23.5, -46.6)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("not symmetric: %f vs %f", a, b)
	}
}

func TestHaversineOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is about 111.19 km on the R=6371 sphere.
	d := Haversine(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.1 {
		t.Fatalf("one degree latitude = %f km, want ~111.19", d)
	}
}
