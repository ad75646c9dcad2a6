package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"ember/database"
	"ember/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateStory posts a story from an uploaded photo. Stories live for 24
// hours; the sweeper reaps them after that.
func CreateStory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	photoFile, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo provided"})
		return
	}
	defer photoFile.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	asset, err := uploadToCloudinary(ctx, photoFile, "ember/stories",
		fmt.Sprintf("%s_%d", userID.Hex(), time.Now().UnixNano()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	now := time.Now().Unix()
	story := models.Story{
		ID:        primitive.NewObjectID(),
		AuthorID:  userID,
		ImageURL:  asset.URL,
		PublicID:  asset.PublicID,
		CreatedAt: now,
		ExpiresAt: now + models.StoryTTL,
	}

	if _, err := database.Stories.InsertOne(ctx, story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create story"})
		return
	}

	if wsManager != nil {
		wsManager.BroadcastStoryPosted(map[string]interface{}{
			"id":        story.ID.Hex(),
			"authorId":  userID.Hex(),
			"imageUrl":  story.ImageURL,
			"createdAt": story.CreatedAt,
			"expiresAt": story.ExpiresAt,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"id": story.ID.Hex(), "expiresAt": story.ExpiresAt})
}

func DeleteStory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	story, ok := loadStory(ctx, c)
	if !ok {
		return
	}
	if story.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete this story"})
		return
	}

	if _, err := database.StoryLikes.DeleteMany(ctx, bson.M{"storyId": story.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete story likes"})
		return
	}
	if _, err := database.Stories.DeleteOne(ctx, bson.M{"_id": story.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete story"})
		return
	}

	if story.PublicID != "" {
		go destroyCloudinaryAsset(context.Background(), story.PublicID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Story deleted"})
}

// GetNearbyStories returns live stories from users near the caller,
// grouped per author. The caller's own group, if any, comes first.
func GetNearbyStories(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	anchorLat, anchorLng, found, err := resolveAnchor(ctx, c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch current user"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}

	authorIDs, err := nearbyUserIDs(ctx, anchorLat, anchorLng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch nearby users"})
		return
	}

	cursor, err := database.Stories.Find(ctx, bson.M{
		"authorId":  bson.M{"$in": authorIDs},
		"expiresAt": bson.M{"$gt": time.Now().Unix()},
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err := cursor.All(ctx, &stories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode stories"})
		return
	}

	groups := groupStories(stories, userID)

	groupAuthors := make([]primitive.ObjectID, len(groups))
	for i, g := range groups {
		groupAuthors[i] = g.AuthorID
	}
	summaries, err := userSummaries(ctx, groupAuthors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch authors"})
		return
	}
	for i := range groups {
		if summary, ok := summaries[groups[i].AuthorID]; ok {
			groups[i].Name, _ = summary["name"].(string)
			groups[i].Avatar, _ = summary["avatar"].(string)
		}
		if groups[i].Avatar == "" {
			groups[i].Avatar = fallbackAvatar
		}
	}

	c.JSON(http.StatusOK, groups)
}

// groupStories buckets stories per author, oldest first within a group.
// The caller's group sorts to the front; the rest order by their newest
// story, most recent author first. Input must be sorted by createdAt asc.
func groupStories(stories []models.Story, callerID primitive.ObjectID) []models.StoryGroup {
	byAuthor := make(map[primitive.ObjectID]*models.StoryGroup)
	order := make([]primitive.ObjectID, 0)

	for _, s := range stories {
		group, ok := byAuthor[s.AuthorID]
		if !ok {
			group = &models.StoryGroup{
				AuthorID: s.AuthorID,
				Mine:     s.AuthorID == callerID,
			}
			byAuthor[s.AuthorID] = group
			order = append(order, s.AuthorID)
		}
		group.Stories = append(group.Stories, s)
	}

	groups := make([]models.StoryGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byAuthor[id])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Mine != groups[j].Mine {
			return groups[i].Mine
		}
		latestI := groups[i].Stories[len(groups[i].Stories)-1].CreatedAt
		latestJ := groups[j].Stories[len(groups[j].Stories)-1].CreatedAt
		return latestI > latestJ
	})

	return groups
}

// LikeStory records a like on a live story. One row per viewer per
// story; liking again refreshes the row's timestamp.
func LikeStory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	story, ok := loadStory(ctx, c)
	if !ok {
		return
	}
	if story.Expired(time.Now().Unix()) {
		c.JSON(http.StatusGone, gin.H{"error": "Story has expired"})
		return
	}

	_, err := database.StoryLikes.UpdateOne(ctx,
		bson.M{"storyId": story.ID, "fromUserId": userID},
		edgeRefresh(bson.M{"toUserId": story.AuthorID}, time.Now().Unix()),
		options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like story"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Story liked"})
}

// GetStoryLikes lists who liked a story. Author only.
func GetStoryLikes(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	story, ok := loadStory(ctx, c)
	if !ok {
		return
	}
	if story.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can see story likes"})
		return
	}

	cursor, err := database.StoryLikes.Find(ctx, bson.M{"storyId": story.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}
	defer cursor.Close(ctx)

	var likes []models.StoryLike
	if err := cursor.All(ctx, &likes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode likes"})
		return
	}

	likerIDs := make([]primitive.ObjectID, len(likes))
	for i, l := range likes {
		likerIDs[i] = l.FromUserID
	}
	summaries, err := userSummaries(ctx, likerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likers"})
		return
	}

	response := make([]map[string]interface{}, len(likes))
	for i, l := range likes {
		entry := summaryOrFallback(summaries, l.FromUserID)
		entry["likedAt"] = l.CreatedAt
		response[i] = entry
	}

	c.JSON(http.StatusOK, response)
}

func loadStory(ctx context.Context, c *gin.Context) (*models.Story, bool) {
	storyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid story ID"})
		return nil, false
	}

	var story models.Story
	err = database.Stories.FindOne(ctx, bson.M{"_id": storyID}).Decode(&story)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Story not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch story"})
		return nil, false
	}
	return &story, true
}
