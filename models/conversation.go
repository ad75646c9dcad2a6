package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Conversation is a two-party chat. Participant1 always holds the
// lexicographically smaller ObjectID so that each unordered pair maps to
// exactly one document (a unique index on the pair backs this up).
type Conversation struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Participant1  primitive.ObjectID  `bson:"participant1" json:"participant1"`
	Participant2  primitive.ObjectID  `bson:"participant2" json:"participant2"`
	LastMessageID *primitive.ObjectID `bson:"lastMessageId,omitempty" json:"lastMessageId,omitempty"`
	LastMessage   string              `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt int64               `bson:"lastMessageAt" json:"lastMessageAt"`
	CreatedAt     int64               `bson:"createdAt" json:"createdAt"`
}

// NormalizePair orders two user IDs so the smaller hex comes first.
func NormalizePair(a, b primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if a.Hex() > b.Hex() {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether the given user is part of the conversation.
func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	return c.Participant1 == userID || c.Participant2 == userID
}

// Partner returns the other participant.
func (c *Conversation) Partner(userID primitive.ObjectID) primitive.ObjectID {
	if c.Participant1 == userID {
		return c.Participant2
	}
	return c.Participant1
}
