package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Taps, profile views and story likes are one-directional edges between two
// users. Each (from, to) pair keeps at most one row; re-sending replaces the
// row so its timestamp (and emoji, for taps) refreshes.

type Tap struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUserID primitive.ObjectID `bson:"fromUserId" json:"fromUserId"`
	ToUserID   primitive.ObjectID `bson:"toUserId" json:"toUserId"`
	Emoji      string             `bson:"emoji" json:"emoji"`
	CreatedAt  int64              `bson:"createdAt" json:"createdAt"`
}

type View struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUserID primitive.ObjectID `bson:"fromUserId" json:"fromUserId"`
	ToUserID   primitive.ObjectID `bson:"toUserId" json:"toUserId"`
	CreatedAt  int64              `bson:"createdAt" json:"createdAt"`
}

type StoryLike struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoryID    primitive.ObjectID `bson:"storyId" json:"storyId"`
	FromUserID primitive.ObjectID `bson:"fromUserId" json:"fromUserId"`
	ToUserID   primitive.ObjectID `bson:"toUserId" json:"toUserId"` // story author
	CreatedAt  int64              `bson:"createdAt" json:"createdAt"`
}

type Favorite struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	TargetUserID primitive.ObjectID `bson:"targetUserId" json:"targetUserId"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
}
