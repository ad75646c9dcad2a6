package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"ember/database"
	"ember/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SendTap sends (or refreshes) a tap to another user. One tap per pair:
// tapping again just updates the emoji and timestamp.
func SendTap(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Emoji  string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	targetID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot tap yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Users.CountDocuments(ctx, bson.M{"_id": targetID})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	emoji := req.Emoji
	if emoji == "" {
		emoji = "🔥"
	}

	now := time.Now().Unix()
	_, err = database.Taps.UpdateOne(ctx,
		bson.M{"fromUserId": userID, "toUserId": targetID},
		edgeRefresh(bson.M{"emoji": emoji}, now),
		options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send tap"})
		return
	}

	if wsManager != nil {
		wsManager.BroadcastTapReceived(map[string]interface{}{
			"fromUserId": userID.Hex(),
			"toUserId":   targetID.Hex(),
			"emoji":      emoji,
			"createdAt":  now,
		})
	}
	go notifyTap(userID, targetID, emoji)

	c.JSON(http.StatusOK, gin.H{"message": "Tap sent"})
}

// GetTaps lists taps the caller has received, newest first.
func GetTaps(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Taps.Find(ctx, bson.M{"toUserId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch taps"})
		return
	}
	defer cursor.Close(ctx)

	var taps []models.Tap
	if err := cursor.All(ctx, &taps); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode taps"})
		return
	}

	senderIDs := make([]primitive.ObjectID, len(taps))
	for i, t := range taps {
		senderIDs[i] = t.FromUserID
	}
	summaries, err := userSummaries(ctx, senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch senders"})
		return
	}

	response := make([]map[string]interface{}, len(taps))
	for i, t := range taps {
		response[i] = map[string]interface{}{
			"from":      summaryOrFallback(summaries, t.FromUserID),
			"emoji":     t.Emoji,
			"createdAt": t.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetViews lists users who viewed the caller's profile, newest first.
func GetViews(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Views.Find(ctx, bson.M{"toUserId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch views"})
		return
	}
	defer cursor.Close(ctx)

	var views []models.View
	if err := cursor.All(ctx, &views); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode views"})
		return
	}

	viewerIDs := make([]primitive.ObjectID, len(views))
	for i, v := range views {
		viewerIDs[i] = v.FromUserID
	}
	summaries, err := userSummaries(ctx, viewerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch viewers"})
		return
	}

	response := make([]map[string]interface{}, len(views))
	for i, v := range views {
		response[i] = map[string]interface{}{
			"viewer":    summaryOrFallback(summaries, v.FromUserID),
			"createdAt": v.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

// recordView notes that viewer looked at target's profile. One row per
// pair, refreshed on every visit. Best effort off the request path.
func recordView(viewerID, targetID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := database.Views.UpdateOne(ctx,
		bson.M{"fromUserId": viewerID, "toUserId": targetID},
		edgeRefresh(bson.M{}, time.Now().Unix()),
		options.Update().SetUpsert(true))
	if err != nil {
		log.Printf("[recordView] upsert failed: %v", err)
	}
}

// edgeRefresh builds the upsert update for a signal edge (tap, view, story
// like). Everything goes through $set so a re-send replaces the existing
// row's fields and refreshes its timestamp instead of leaving the old row
// untouched.
func edgeRefresh(fields bson.M, now int64) bson.M {
	fields["createdAt"] = now
	return bson.M{"$set": fields}
}
