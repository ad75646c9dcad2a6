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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SendMessageRequest struct {
	ConversationID string   `json:"conversationId" binding:"required"`
	Text           string   `json:"text"`
	ImageURLs      []string `json:"imageUrls"`
	ViewOnce       bool     `json:"viewOnce"`

	// Album share: duration in seconds the recipient may browse the album.
	AlbumID            string `json:"albumId"`
	AlbumShareDuration int64  `json:"albumShareDuration"`
}

func SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	convID, err := primitive.ObjectIDFromHex(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	if req.Text == "" && len(req.ImageURLs) == 0 && req.AlbumID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must have text, images or an album"})
		return
	}
	if len(req.Text) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text too long"})
		return
	}
	if req.ViewOnce && len(req.ImageURLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "View-once requires an image"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conv, ok := loadConversationForUser(ctx, c, convID, userID)
	if !ok {
		return
	}

	now := time.Now().Unix()
	message := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		SenderID:       userID,
		Text:           req.Text,
		ImageURLs:      req.ImageURLs,
		ViewOnce:       req.ViewOnce,
		CreatedAt:      now,
	}

	if req.AlbumID != "" {
		albumID, err := primitive.ObjectIDFromHex(req.AlbumID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
			return
		}
		if req.AlbumShareDuration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Album share needs a positive duration"})
			return
		}

		var album models.Album
		err = database.Albums.FindOne(ctx, bson.M{"_id": albumID}).Decode(&album)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Album not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch album"})
			return
		}
		if album.OwnerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this album"})
			return
		}

		photoCount, err := database.AlbumPhotos.CountDocuments(ctx, bson.M{"albumId": albumID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count album photos"})
			return
		}

		message.AlbumID = &albumID
		message.AlbumExpiresAt = now + req.AlbumShareDuration
		message.AlbumTitle = album.Title
		message.AlbumPhotoCount = int(photoCount)
		message.AlbumCover = albumCoverURL(ctx, &album)
	}

	if _, err := database.Messages.InsertOne(ctx, message); err != nil {
		log.Printf("[SendMessage] insert error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	// Keep the parent's denormalized last-message pointer in step.
	preview := messagePreview(&message)
	if _, err := database.Conversations.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{
		"$set": bson.M{
			"lastMessageId": message.ID,
			"lastMessage":   preview,
			"lastMessageAt": message.CreatedAt,
		},
	}); err != nil {
		// Message is saved; the pointer catches up on the next send.
		log.Printf("[SendMessage] update lastMessage error: %v", err)
	}

	if wsManager != nil {
		wsManager.BroadcastNewMessage(map[string]interface{}{
			"id":             message.ID.Hex(),
			"conversationId": convID.Hex(),
			"senderId":       userID.Hex(),
			"preview":        preview,
			"createdAt":      message.CreatedAt,
		})
	}

	notifyNewMessage(userID, conv.Partner(userID), preview)

	c.JSON(http.StatusCreated, gin.H{"message": "Message sent", "id": message.ID.Hex()})
}

// messagePreview is the one-line rendering stored on the conversation.
func messagePreview(m *models.Message) string {
	switch {
	case m.Text != "":
		return m.Text
	case m.AlbumID != nil:
		return "Shared an album"
	case m.ViewOnce:
		return "Sent a view-once photo"
	default:
		return "Sent a photo"
	}
}

func GetMessages(c *gin.Context) {
	convID, err := primitive.ObjectIDFromHex(c.Param("conversationId"))
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

	cursor, err := database.Messages.Find(ctx, bson.M{"conversationId": convID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		log.Printf("[GetMessages] query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode messages"})
		return
	}

	now := time.Now().Unix()
	response := make([]map[string]interface{}, len(messages))
	for i := range messages {
		m := &messages[i]

		entry := map[string]interface{}{
			"id":             m.ID.Hex(),
			"conversationId": m.ConversationID.Hex(),
			"senderId":       m.SenderID.Hex(),
			"text":           m.Text,
			"viewOnce":       m.ViewOnce,
			"opened":         m.Opened,
			"isRead":         m.IsRead,
			"createdAt":      m.CreatedAt,
		}

		if m.ImagesVisibleTo(userID) {
			entry["imageUrls"] = m.ImageURLs
		}

		if m.AlbumID != nil {
			entry["album"] = map[string]interface{}{
				"albumId":    m.AlbumID.Hex(),
				"title":      m.AlbumTitle,
				"cover":      m.AlbumCover,
				"photoCount": m.AlbumPhotoCount,
				"expiresAt":  m.AlbumExpiresAt,
				"locked":     m.AlbumShareExpired(now),
			}
		}

		response[i] = entry
	}

	c.JSON(http.StatusOK, response)
}

// DeleteMessage removes one of the caller's own messages. If it was the
// conversation's last message, the pointer is recomputed from the remaining
// messages, or cleared when none are left.
func DeleteMessage(c *gin.Context) {
	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var msg models.Message
	err = database.Messages.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch message"})
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own messages"})
		return
	}

	if _, err := database.Messages.DeleteOne(ctx, bson.M{"_id": messageID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}

	var conv models.Conversation
	err = database.Conversations.FindOne(ctx, bson.M{"_id": msg.ConversationID}).Decode(&conv)
	if err == nil && conv.LastMessageID != nil && *conv.LastMessageID == messageID {
		if err := recomputeLastMessage(ctx, msg.ConversationID); err != nil {
			log.Printf("[DeleteMessage] recompute lastMessage error: %v", err)
		}
	}

	if wsManager != nil {
		wsManager.BroadcastMessageDeleted(map[string]interface{}{
			"id":             messageID.Hex(),
			"conversationId": msg.ConversationID.Hex(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// recomputeLastMessage re-scans for the most recent remaining message and
// rewrites the conversation pointer, clearing it when the thread is empty.
func recomputeLastMessage(ctx context.Context, convID primitive.ObjectID) error {
	var latest models.Message
	err := database.Messages.FindOne(ctx, bson.M{"conversationId": convID},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&latest)

	if err == mongo.ErrNoDocuments {
		_, err = database.Conversations.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{
			"$set":   bson.M{"lastMessage": "", "lastMessageAt": 0},
			"$unset": bson.M{"lastMessageId": ""},
		})
		return err
	}
	if err != nil {
		return err
	}

	_, err = database.Conversations.UpdateOne(ctx, bson.M{"_id": convID}, bson.M{
		"$set": bson.M{
			"lastMessageId": latest.ID,
			"lastMessage":   messagePreview(&latest),
			"lastMessageAt": latest.CreatedAt,
		},
	})
	return err
}

// OpenViewOnce transitions a view-once photo to opened. Recipient only,
// exactly once: the conditional update clears the image references in the
// same write that flips the flag, so a racing second open finds nothing.
func OpenViewOnce(c *gin.Context) {
	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var msg models.Message
	err = database.Messages.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch message"})
		return
	}

	if !msg.ViewOnce {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not a view-once message"})
		return
	}
	if msg.SenderID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Sender cannot open a view-once photo"})
		return
	}

	if _, ok := loadConversationForUser(ctx, c, msg.ConversationID, userID); !ok {
		return
	}

	imageURLs := msg.ImageURLs

	result, err := database.Messages.UpdateOne(ctx,
		bson.M{"_id": messageID, "opened": false},
		bson.M{
			"$set":   bson.M{"opened": true},
			"$unset": bson.M{"imageUrls": ""},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open message"})
		return
	}
	if result.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Photo already opened"})
		return
	}

	if wsManager != nil {
		wsManager.BroadcastViewOnceOpened(map[string]interface{}{
			"id":             messageID.Hex(),
			"conversationId": msg.ConversationID.Hex(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"imageUrls": imageURLs})
}

// SendTypingIndicator relays a typing event over the websocket hub.
func SendTypingIndicator(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversationId" binding:"required"`
		Typing         bool   `json:"typing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	eventType := "typing_end"
	if req.Typing {
		eventType = "typing_start"
	}

	if wsManager != nil {
		wsManager.BroadcastTyping(eventType, map[string]interface{}{
			"conversationId": req.ConversationID,
			"userId":         userID.Hex(),
			"timestamp":      time.Now().Unix(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Typing indicator sent"})
}

// MarkAsRead marks every unread partner message in the thread as read.
func MarkAsRead(c *gin.Context) {
	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var msg models.Message
	err = database.Messages.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}

	if _, ok := loadConversationForUser(ctx, c, msg.ConversationID, userID); !ok {
		return
	}

	result, err := database.Messages.UpdateMany(ctx,
		bson.M{
			"conversationId": msg.ConversationID,
			"senderId":       bson.M{"$ne": userID},
			"isRead":         false,
		},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Marked as read",
		"updatedCount": result.ModifiedCount,
	})
}
