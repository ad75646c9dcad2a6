package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"ember/database"
	"ember/models"

	"github.com/go-co-op/gocron/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// StartStorySweeper schedules the periodic reaper for expired stories.
// Queries already filter on expiresAt, so the sweep only reclaims disk
// and Cloudinary storage; nothing user-visible depends on its timing.
func StartStorySweeper(destroyAsset func(ctx context.Context, publicID string)) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() { sweepExpiredStories(destroyAsset) }),
		gocron.WithName("story-sweeper"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule story sweeper: %w", err)
	}

	s.Start()
	log.Println("Story sweeper scheduled (every 15m)")
	return s, nil
}

func sweepExpiredStories(destroyAsset func(ctx context.Context, publicID string)) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	now := time.Now().Unix()

	cursor, err := database.Stories.Find(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		log.Printf("[sweeper] query failed: %v", err)
		return
	}

	var expired []models.Story
	if err := cursor.All(ctx, &expired); err != nil {
		log.Printf("[sweeper] decode failed: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	ids := make([]interface{}, len(expired))
	for i, story := range expired {
		ids[i] = story.ID
	}

	if _, err := database.StoryLikes.DeleteMany(ctx, bson.M{"storyId": bson.M{"$in": ids}}); err != nil {
		log.Printf("[sweeper] like cleanup failed: %v", err)
	}

	result, err := database.Stories.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		log.Printf("[sweeper] delete failed: %v", err)
		return
	}

	for _, story := range expired {
		if story.PublicID != "" && destroyAsset != nil {
			destroyAsset(ctx, story.PublicID)
		}
	}

	log.Printf("[sweeper] removed %d expired stories", result.DeletedCount)
}
