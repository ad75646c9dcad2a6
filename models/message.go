package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversationId" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"senderId" json:"senderId"`
	Text           string             `bson:"text,omitempty" json:"text,omitempty"`
	ImageURLs      []string           `bson:"imageUrls,omitempty" json:"imageUrls,omitempty"`
	ViewOnce       bool               `bson:"viewOnce" json:"viewOnce"`
	Opened         bool               `bson:"opened" json:"opened"`
	IsRead         bool               `bson:"isRead" json:"isRead"`
	CreatedAt      int64              `bson:"createdAt" json:"createdAt"`

	// Album share fields. Title/cover/count are denormalized at send time
	// so the bubble renders without touching the albums collection.
	AlbumID         *primitive.ObjectID `bson:"albumId,omitempty" json:"albumId,omitempty"`
	AlbumExpiresAt  int64               `bson:"albumExpiresAt,omitempty" json:"albumExpiresAt,omitempty"`
	AlbumTitle      string              `bson:"albumTitle,omitempty" json:"albumTitle,omitempty"`
	AlbumCover      string              `bson:"albumCover,omitempty" json:"albumCover,omitempty"`
	AlbumPhotoCount int                 `bson:"albumPhotoCount,omitempty" json:"albumPhotoCount,omitempty"`
}

// HasContent reports whether the message carries text, images or an album
// reference. A message with none of the three is invalid.
func (m *Message) HasContent() bool {
	return m.Text != "" || len(m.ImageURLs) > 0 || m.AlbumID != nil
}

// ImagesVisibleTo reports whether the message's images may be delivered to
// the given viewer. A view-once photo is only ever delivered to the
// recipient, and only while unopened.
func (m *Message) ImagesVisibleTo(viewerID primitive.ObjectID) bool {
	return !m.ViewOnce || (m.SenderID != viewerID && !m.Opened)
}

// AlbumShareExpired reports whether an album share is past its expiry at
// the given unix time. Messages without an album share never expire.
func (m *Message) AlbumShareExpired(nowUnix int64) bool {
	return m.AlbumID != nil && nowUnix > m.AlbumExpiresAt
}
