package models

import "testing"

func TestEventHasRoom(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		count    int64
		want     bool
	}{
		{"unlimited", 0, 1000, true},
		{"under capacity", 10, 9, true},
		{"at capacity", 10, 10, false},
		{"over capacity", 10, 11, false},
		{"capacity one with only organizer", 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{Capacity: tt.capacity}
			if got := e.HasRoom(tt.count); got != tt.want {
				t.Errorf("HasRoom(%d) with capacity %d = %v, want %v",
					tt.count, tt.capacity, got, tt.want)
			}
		})
	}
}
