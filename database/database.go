package database

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client

var (
	Users          *mongo.Collection
	Conversations  *mongo.Collection
	Messages       *mongo.Collection
	Events         *mongo.Collection
	EventAttendees *mongo.Collection
	EventMessages  *mongo.Collection
	Albums         *mongo.Collection
	AlbumPhotos    *mongo.Collection
	Stories        *mongo.Collection
	StoryLikes     *mongo.Collection
	Taps           *mongo.Collection
	Views          *mongo.Collection
	Favorites      *mongo.Collection
	PushSubs       *mongo.Collection
)

func ConnectMongo() error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Println("MONGODB_URI not set, using default localhost")
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database("ember")
	Users = db.Collection("users")
	Conversations = db.Collection("conversations")
	Messages = db.Collection("messages")
	Events = db.Collection("events")
	EventAttendees = db.Collection("event_attendees")
	EventMessages = db.Collection("event_messages")
	Albums = db.Collection("albums")
	AlbumPhotos = db.Collection("album_photos")
	Stories = db.Collection("stories")
	StoryLikes = db.Collection("story_likes")
	Taps = db.Collection("taps")
	Views = db.Collection("views")
	Favorites = db.Collection("favorites")
	PushSubs = db.Collection("push_subscriptions")

	if err := ensureIndexes(ctx); err != nil {
		return err
	}

	log.Println("Connected to MongoDB successfully")
	return nil
}

// ensureIndexes creates the indexes the handlers rely on. The 2dsphere
// index on users.location backs the nearby queries; the unique pair
// indexes enforce at-most-one row per conversation pair and per signal edge.
func ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		Conversations: {
			{Keys: bson.D{{Key: "participant1", Value: 1}, {Key: "participant2", Value: 1}}, Options: unique},
		},
		Messages: {
			{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		EventAttendees: {
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		EventMessages: {
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		AlbumPhotos: {
			{Keys: bson.D{{Key: "albumId", Value: 1}}},
		},
		Stories: {
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
		},
		StoryLikes: {
			{Keys: bson.D{{Key: "storyId", Value: 1}, {Key: "fromUserId", Value: 1}}, Options: unique},
		},
		Taps: {
			{Keys: bson.D{{Key: "fromUserId", Value: 1}, {Key: "toUserId", Value: 1}}, Options: unique},
		},
		Views: {
			{Keys: bson.D{{Key: "fromUserId", Value: 1}, {Key: "toUserId", Value: 1}}, Options: unique},
		},
		Favorites: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "targetUserId", Value: 1}}, Options: unique},
		},
		PushSubs: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func DisconnectMongo() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
