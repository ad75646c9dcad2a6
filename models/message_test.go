package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMessageHasContent(t *testing.T) {
	albumID := primitive.NewObjectID()

	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"empty", Message{}, false},
		{"text only", Message{Text: "hey"}, true},
		{"image only", Message{ImageURLs: []string{"https://cdn/x.jpg"}}, true},
		{"album only", Message{AlbumID: &albumID}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.HasContent(); got != tt.want {
				t.Errorf("HasContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImagesVisibleTo(t *testing.T) {
	sender := primitive.NewObjectID()
	recipient := primitive.NewObjectID()

	tests := []struct {
		name   string
		msg    Message
		viewer primitive.ObjectID
		want   bool
	}{
		{
			name:   "plain photo visible to sender",
			msg:    Message{SenderID: sender, ImageURLs: []string{"x.jpg"}},
			viewer: sender,
			want:   true,
		},
		{
			name:   "plain photo visible to recipient",
			msg:    Message{SenderID: sender, ImageURLs: []string{"x.jpg"}},
			viewer: recipient,
			want:   true,
		},
		{
			name:   "view-once hidden from sender",
			msg:    Message{SenderID: sender, ImageURLs: []string{"x.jpg"}, ViewOnce: true},
			viewer: sender,
			want:   false,
		},
		{
			name:   "view-once visible to recipient while unopened",
			msg:    Message{SenderID: sender, ImageURLs: []string{"x.jpg"}, ViewOnce: true},
			viewer: recipient,
			want:   true,
		},
		{
			name:   "view-once hidden from recipient once opened",
			msg:    Message{SenderID: sender, ViewOnce: true, Opened: true},
			viewer: recipient,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.ImagesVisibleTo(tt.viewer); got != tt.want {
				t.Errorf("ImagesVisibleTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlbumShareExpired(t *testing.T) {
	albumID := primitive.NewObjectID()
	now := int64(1_700_000_000)

	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"no album never expires", Message{AlbumExpiresAt: now - 100}, false},
		{"live share", Message{AlbumID: &albumID, AlbumExpiresAt: now + 60}, false},
		{"expired share", Message{AlbumID: &albumID, AlbumExpiresAt: now - 1}, true},
		{"exactly at expiry still live", Message{AlbumID: &albumID, AlbumExpiresAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.AlbumShareExpired(now); got != tt.want {
				t.Errorf("AlbumShareExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
