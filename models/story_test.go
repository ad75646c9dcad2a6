package models

import "testing"

func TestStoryExpired(t *testing.T) {
	now := int64(1_700_000_000)

	tests := []struct {
		name  string
		story Story
		want  bool
	}{
		{"fresh", Story{ExpiresAt: now + StoryTTL}, false},
		{"one second left", Story{ExpiresAt: now + 1}, false},
		{"exactly at expiry", Story{ExpiresAt: now}, true},
		{"long gone", Story{ExpiresAt: now - StoryTTL}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.story.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
