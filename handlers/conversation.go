package handlers

import (
	"context"
	"net/http"
	"time"

	"ember/database"
	"ember/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetOrCreateConversation returns the conversation with the given user,
// creating it when none exists. Participants are stored in normalized
// order, so both directions land on the same document.
func GetOrCreateConversation(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	otherID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if userID == otherID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot start a conversation with yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p1, p2 := models.NormalizePair(userID, otherID)
	pairFilter := bson.M{"participant1": p1, "participant2": p2}

	var existing models.Conversation
	err = database.Conversations.FindOne(ctx, pairFilter).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"id": existing.ID.Hex(), "created": false})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	conv := models.Conversation{
		ID:            primitive.NewObjectID(),
		Participant1:  p1,
		Participant2:  p2,
		LastMessageAt: time.Now().Unix(),
		CreatedAt:     time.Now().Unix(),
	}

	if _, err := database.Conversations.InsertOne(ctx, conv); err != nil {
		// Unique pair index: a concurrent create from the other side wins.
		if mongo.IsDuplicateKeyError(err) {
			if err := database.Conversations.FindOne(ctx, pairFilter).Decode(&existing); err == nil {
				c.JSON(http.StatusOK, gin.H{"id": existing.ID.Hex(), "created": false})
				return
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	if wsManager != nil {
		wsManager.BroadcastConversationCreated(map[string]interface{}{
			"id":           conv.ID.Hex(),
			"participants": []string{p1.Hex(), p2.Hex()},
		})
	}

	c.JSON(http.StatusCreated, gin.H{"id": conv.ID.Hex(), "created": true})
}

// GetConversations lists the caller's conversations, most recent message
// first, with the partner's summary attached.
func GetConversations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Conversations.Find(ctx, bson.M{"$or": []bson.M{
		{"participant1": userID},
		{"participant2": userID},
	}}, options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode conversations"})
		return
	}

	partnerIDs := make([]primitive.ObjectID, 0, len(conversations))
	for _, conv := range conversations {
		partnerIDs = append(partnerIDs, conv.Partner(userID))
	}

	summaries, err := userSummaries(ctx, partnerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partners"})
		return
	}

	response := make([]map[string]interface{}, len(conversations))
	for i, conv := range conversations {
		response[i] = map[string]interface{}{
			"id":            conv.ID.Hex(),
			"lastMessage":   conv.LastMessage,
			"lastMessageAt": conv.LastMessageAt,
			"partner":       summaryOrFallback(summaries, conv.Partner(userID)),
		}
	}

	c.JSON(http.StatusOK, response)
}

func GetConversation(c *gin.Context) {
	convID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conv, ok := loadConversationForUser(ctx, c, convID, userID)
	if !ok {
		return
	}

	summaries, err := userSummaries(ctx, []primitive.ObjectID{conv.Partner(userID)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch partner"})
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"id":            conv.ID.Hex(),
		"lastMessage":   conv.LastMessage,
		"lastMessageAt": conv.LastMessageAt,
		"createdAt":     conv.CreatedAt,
		"partner":       summaryOrFallback(summaries, conv.Partner(userID)),
	})
}

// DeleteConversation removes a conversation and all of its messages.
func DeleteConversation(c *gin.Context) {
	convID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok := loadConversationForUser(ctx, c, convID, userID); !ok {
		return
	}

	// Messages go first so a failure never leaves orphans unreachable
	// behind a deleted parent.
	if _, err := database.Messages.DeleteMany(ctx, bson.M{"conversationId": convID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete messages"})
		return
	}
	if _, err := database.Conversations.DeleteOne(ctx, bson.M{"_id": convID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted"})
}

// loadConversationForUser fetches a conversation and enforces that the
// caller participates in it, writing the error response itself otherwise.
func loadConversationForUser(ctx context.Context, c *gin.Context, convID, userID primitive.ObjectID) (*models.Conversation, bool) {
	var conv models.Conversation
	err := database.Conversations.FindOne(ctx, bson.M{"_id": convID}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return nil, false
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to conversation"})
		return nil, false
	}
	return &conv, true
}
