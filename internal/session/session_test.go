package session

import (
	"math"
	"testing"
	"time"

	"github.com/shaunagostinho/gowardrive/internal/gps"
)

func TestRecordFixAccumulatesDistance(t *testing.T) {
	s := New(2024, 5)

	if _, _, ok := s.Position(); ok {
		t.Fatal("position set before first fix")
	}

	s.RecordFix(48.8566, 2.3522)
	if s.DistanceMeters() != 0 {
		t.Errorf("first fix added distance: %f", s.DistanceMeters())
	}

	s.RecordFix(48.8600, 2.3600)
	want := gps.DistanceMeters(48.8566, 2.3522, 48.8600, 2.3600)
	if math.Abs(s.DistanceMeters()-want) > 1e-9 {
		t.Errorf("distance = %f, want %f", s.DistanceMeters(), want)
	}

	s.RecordFix(48.8650, 2.3700)
	want += gps.DistanceMeters(48.8600, 2.3600, 48.8650, 2.3700)
	if math.Abs(s.DistanceMeters()-want) > 1e-9 {
		t.Errorf("distance after third fix = %f, want %f", s.DistanceMeters(), want)
	}

	lat, lng, ok := s.Position()
	if !ok || lat != 48.8650 || lng != 2.3700 {
		t.Errorf("position = (%f, %f, %v), want (48.8650, 2.3700, true)", lat, lng, ok)
	}
}

func TestDistanceMonotonic(t *testing.T) {
	s := New(2024, 5)
	s.RecordFix(10, 10)
	prev := 0.0
	coords := [][2]float64{{10.1, 10}, {10.1, 10.1}, {10.1, 10.1}, {10, 10}}
	for _, c := range coords {
		s.RecordFix(c[0], c[1])
		if s.DistanceMeters() < prev {
			t.Fatalf("distance decreased: %f < %f", s.DistanceMeters(), prev)
		}
		prev = s.DistanceMeters()
	}
}

func TestDeriveFilename(t *testing.T) {
	s := New(2024, 5)

	// Garbage pre-fix timestamps are rejected.
	s.DeriveFilename(time.Time{})
	s.DeriveFilename(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	s.DeriveFilename(time.Date(2080, 1, 1, 0, 0, 0, 0, time.UTC))
	if s.Filename() != "" {
		t.Fatalf("implausible date produced filename %q", s.Filename())
	}

	ts := time.Date(2025, 11, 28, 14, 30, 5, 0, time.UTC)
	s.DeriveFilename(ts)
	if got, want := s.Filename(), "251128_143005_wardriving.csv"; got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}

	// Fixed for the remainder of the session.
	s.DeriveFilename(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if s.Filename() != "251128_143005_wardriving.csv" {
		t.Errorf("filename changed after assignment: %q", s.Filename())
	}
}

func TestNetworkCounter(t *testing.T) {
	s := New(2024, 5)
	for i := 0; i < 3; i++ {
		s.AddNetwork()
	}
	if s.UniqueNetworks() != 3 {
		t.Errorf("unique networks = %d, want 3", s.UniqueNetworks())
	}
}
