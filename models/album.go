package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Album struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID  `bson:"ownerId" json:"ownerId"`
	Title        string              `bson:"title" json:"title"`
	CoverPhotoID *primitive.ObjectID `bson:"coverPhotoId,omitempty" json:"coverPhotoId,omitempty"`
	CreatedAt    int64               `bson:"createdAt" json:"createdAt"`

	PhotoCount int64 `bson:"-" json:"photoCount,omitempty"`
}

type AlbumPhoto struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AlbumID   primitive.ObjectID `bson:"albumId" json:"albumId"`
	URL       string             `bson:"url" json:"url"`
	PublicID  string             `bson:"publicId" json:"-"` // cloudinary asset id
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
