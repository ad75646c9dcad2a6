package handlers

import (
	"testing"

	"ember/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMessagePreview(t *testing.T) {
	albumID := primitive.NewObjectID()

	tests := []struct {
		name string
		msg  models.Message
		want string
	}{
		{
			name: "text wins",
			msg:  models.Message{Text: "see you there", ImageURLs: []string{"x.jpg"}},
			want: "see you there",
		},
		{
			name: "album share",
			msg:  models.Message{AlbumID: &albumID, AlbumTitle: "Trip"},
			want: "Shared an album",
		},
		{
			name: "view-once photo",
			msg:  models.Message{ImageURLs: []string{"x.jpg"}, ViewOnce: true},
			want: "Sent a view-once photo",
		},
		{
			name: "plain photo",
			msg:  models.Message{ImageURLs: []string{"x.jpg"}},
			want: "Sent a photo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messagePreview(&tt.msg); got != tt.want {
				t.Errorf("messagePreview() = %q, want %q", got, tt.want)
			}
		})
	}
}
