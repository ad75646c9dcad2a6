package models

import "testing"

func TestUserAge(t *testing.T) {
	const yearSeconds = int64(365.2425 * 24 * 3600)
	now := int64(1_700_000_000)

	tests := []struct {
		name      string
		birthDate int64
		want      int
	}{
		{"unset birth date", 0, -1},
		{"thirty years old", now - 30*yearSeconds - 1000, 30},
		{"just under eighteen", now - 18*yearSeconds + 1000, 17},
		{"born in the future", now + yearSeconds, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{BirthDate: tt.birthDate}
			if got := u.Age(now); got != tt.want {
				t.Errorf("Age() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGeoPointRoundTrip(t *testing.T) {
	p := NewGeoPoint(52.52, 13.405)

	if p.Type != "Point" {
		t.Errorf("Type = %q, want Point", p.Type)
	}
	// GeoJSON stores [longitude, latitude].
	if p.Coordinates[0] != 13.405 || p.Coordinates[1] != 52.52 {
		t.Errorf("Coordinates = %v, want [13.405 52.52]", p.Coordinates)
	}
	if p.Latitude() != 52.52 {
		t.Errorf("Latitude() = %v, want 52.52", p.Latitude())
	}
	if p.Longitude() != 13.405 {
		t.Errorf("Longitude() = %v, want 13.405", p.Longitude())
	}
}
