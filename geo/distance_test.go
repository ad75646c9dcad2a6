package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 40.7128, lon2: -74.0060,
			want: 0, tolerance: 0.001,
		},
		{
			name: "london to paris",
			lat1: 51.5074, lon1: -0.1278,
			lat2: 48.8566, lon2: 2.3522,
			want: 343.5, tolerance: 1.0,
		},
		{
			name: "new york to los angeles",
			lat1: 40.7128, lon1: -74.0060,
			lat2: 34.0522, lon2: -118.2437,
			want: 3935.7, tolerance: 5.0,
		},
		{
			name: "short hop across a city",
			lat1: 52.5200, lon1: 13.4050,
			lat2: 52.5310, lon2: 13.3847,
			want: 1.85, tolerance: 0.1,
		},
		{
			name: "across the equator",
			lat1: 1.0, lon1: 0.0,
			lat2: -1.0, lon2: 0.0,
			want: 222.4, tolerance: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceKm() = %.3f, want %.3f (±%.3f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	ab := DistanceKm(51.5074, -0.1278, 48.8566, 2.3522)
	ba := DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %.9f vs %.9f", ab, ba)
	}
}

func TestDistanceMeters(t *testing.T) {
	got := DistanceMeters(52.5200, 13.4050, 52.5200, 13.4050)
	if got != 0 {
		t.Errorf("DistanceMeters(same point) = %v, want 0", got)
	}

	got = DistanceMeters(52.5200, 13.4050, 52.5310, 13.3847)
	if got != math.Trunc(got) {
		t.Errorf("DistanceMeters() = %v, want whole meters", got)
	}
	if got < 1500 || got > 2200 {
		t.Errorf("DistanceMeters() = %v, want roughly 1850", got)
	}
}
