package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// StoryTTL is how long a story stays visible, in seconds.
const StoryTTL int64 = 24 * 3600

type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID  primitive.ObjectID `bson:"authorId" json:"authorId"`
	ImageURL  string             `bson:"imageUrl" json:"imageUrl"`
	PublicID  string             `bson:"publicId" json:"-"` // cloudinary asset id
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
	ExpiresAt int64              `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the story is past its expiry at the given unix time.
func (s *Story) Expired(nowUnix int64) bool {
	return nowUnix >= s.ExpiresAt
}

// StoryGroup is one author's live stories in the nearby feed.
type StoryGroup struct {
	AuthorID primitive.ObjectID `json:"authorId"`
	Name     string             `json:"name"`
	Avatar   string             `json:"avatar"`
	Mine     bool               `json:"mine"`
	Stories  []Story            `json:"stories"`
}
