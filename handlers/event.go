package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ember/database"
	"ember/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreateEventRequest struct {
	Title       string            `json:"title" binding:"required,max=120"`
	Description string            `json:"description"`
	Location    string            `json:"location" binding:"required"`
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	StartsAt    int64             `json:"startsAt" binding:"required"`
	Capacity    int               `json:"capacity"`
	EventType   string            `json:"eventType"`
	Website     string            `json:"website"`
	Socials     map[string]string `json:"socials"`
}

func CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if req.Capacity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity cannot be negative"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := models.Event{
		ID:          primitive.NewObjectID(),
		OrganizerID: userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		Capacity:    req.Capacity,
		EventType:   req.EventType,
		Website:     req.Website,
		Socials:     req.Socials,
		CreatedAt:   time.Now().Unix(),
	}
	if req.Latitude != nil && req.Longitude != nil {
		event.Coordinates = models.NewGeoPoint(*req.Latitude, *req.Longitude)
	}

	if _, err := database.Events.InsertOne(ctx, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	// The organizer always attends their own event.
	attendee := models.EventAttendee{
		ID:       primitive.NewObjectID(),
		EventID:  event.ID,
		UserID:   userID,
		JoinedAt: event.CreatedAt,
	}
	database.EventAttendees.InsertOne(ctx, attendee)

	c.JSON(http.StatusCreated, gin.H{"id": event.ID.Hex()})
}

// GetEvents lists upcoming events, optionally filtered by type, time window
// or to those the caller organizes or attends.
func GetEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if eventType := c.Query("type"); eventType != "" {
		filter["eventType"] = eventType
	}

	timeRange := bson.M{}
	if from, err := strconv.ParseInt(c.Query("from"), 10, 64); err == nil {
		timeRange["$gte"] = from
	}
	if to, err := strconv.ParseInt(c.Query("to"), 10, 64); err == nil {
		timeRange["$lte"] = to
	}
	if len(timeRange) == 0 {
		// Default view: everything that has not started yet.
		timeRange["$gte"] = time.Now().Unix()
	}
	filter["startsAt"] = timeRange

	if c.Query("mine") == "true" {
		attCursor, err := database.EventAttendees.Find(ctx, bson.M{"userId": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance"})
			return
		}
		var attendance []models.EventAttendee
		if err := attCursor.All(ctx, &attendance); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode attendance"})
			return
		}
		eventIDs := make([]primitive.ObjectID, len(attendance))
		for i, a := range attendance {
			eventIDs[i] = a.EventID
		}
		filter["_id"] = bson.M{"$in": eventIDs}
		delete(filter, "startsAt")
	}

	cursor, err := database.Events.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "startsAt", Value: 1}}).SetLimit(100))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode events"})
		return
	}

	for i := range events {
		count, _ := database.EventAttendees.CountDocuments(ctx, bson.M{"eventId": events[i].ID})
		events[i].AttendeeCount = count
	}

	c.JSON(http.StatusOK, events)
}

func GetEvent(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}

	count, _ := database.EventAttendees.CountDocuments(ctx, bson.M{"eventId": event.ID})
	event.AttendeeCount = count

	c.JSON(http.StatusOK, event)
}

func UpdateEvent(c *gin.Context) {
	var req struct {
		Title       *string           `json:"title"`
		Description *string           `json:"description"`
		Location    *string           `json:"location"`
		StartsAt    *int64            `json:"startsAt"`
		Capacity    *int              `json:"capacity"`
		EventType   *string           `json:"eventType"`
		Website     *string           `json:"website"`
		Socials     map[string]string `json:"socials"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}
	if event.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the organizer can edit this event"})
		return
	}

	set := bson.M{}
	if req.Title != nil && *req.Title != "" {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Location != nil && *req.Location != "" {
		set["location"] = *req.Location
	}
	if req.StartsAt != nil {
		set["startsAt"] = *req.StartsAt
	}
	if req.Capacity != nil && *req.Capacity >= 0 {
		set["capacity"] = *req.Capacity
	}
	if req.EventType != nil {
		set["eventType"] = *req.EventType
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	if req.Socials != nil {
		set["socials"] = req.Socials
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	if _, err := database.Events.UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated"})
}

// DeleteEvent removes an event and cascades to its attendee rows and chat.
func DeleteEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}
	if event.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the organizer can delete this event"})
		return
	}

	if _, err := database.EventAttendees.DeleteMany(ctx, bson.M{"eventId": event.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attendees"})
		return
	}
	if _, err := database.EventMessages.DeleteMany(ctx, bson.M{"eventId": event.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event chat"})
		return
	}
	if _, err := database.Events.DeleteOne(ctx, bson.M{"_id": event.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

func JoinEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}

	joined, err := database.EventAttendees.CountDocuments(ctx,
		bson.M{"eventId": event.ID, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if joined > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already joined this event"})
		return
	}

	attendeeCount, err := database.EventAttendees.CountDocuments(ctx, bson.M{"eventId": event.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !event.HasRoom(attendeeCount) {
		c.JSON(http.StatusConflict, gin.H{"error": "Event is full"})
		return
	}

	attendee := models.EventAttendee{
		ID:       primitive.NewObjectID(),
		EventID:  event.ID,
		UserID:   userID,
		JoinedAt: time.Now().Unix(),
	}

	if _, err := database.EventAttendees.InsertOne(ctx, attendee); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already joined this event"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Joined event"})
}

func LeaveEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}
	if event.OrganizerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Organizer cannot leave their own event"})
		return
	}

	result, err := database.EventAttendees.DeleteOne(ctx,
		bson.M{"eventId": event.ID, "userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave event"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not attending this event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left event"})
}

func GetEventAttendees(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}

	cursor, err := database.EventAttendees.Find(ctx, bson.M{"eventId": event.ID},
		options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendees"})
		return
	}
	defer cursor.Close(ctx)

	var attendance []models.EventAttendee
	if err := cursor.All(ctx, &attendance); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode attendees"})
		return
	}

	userIDs := make([]primitive.ObjectID, len(attendance))
	for i, a := range attendance {
		userIDs[i] = a.UserID
	}

	summaries, err := userSummaries(ctx, userIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	response := make([]map[string]interface{}, len(attendance))
	for i, a := range attendance {
		entry := summaryOrFallback(summaries, a.UserID)
		entry["joinedAt"] = a.JoinedAt
		entry["organizer"] = a.UserID == event.OrganizerID
		response[i] = entry
	}

	c.JSON(http.StatusOK, response)
}

// SendEventMessage posts into an event's chat. Attendees only.
func SendEventMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Text) > maxMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message text too long"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}
	if !isEventAttendee(ctx, event, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only attendees can chat in this event"})
		return
	}

	msg := models.EventMessage{
		ID:        primitive.NewObjectID(),
		EventID:   event.ID,
		SenderID:  userID,
		Text:      req.Text,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.EventMessages.InsertOne(ctx, msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	if wsManager != nil {
		wsManager.BroadcastEventMessage(map[string]interface{}{
			"id":        msg.ID.Hex(),
			"eventId":   event.ID.Hex(),
			"senderId":  userID.Hex(),
			"text":      msg.Text,
			"createdAt": msg.CreatedAt,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"id": msg.ID.Hex()})
}

func GetEventMessages(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event, ok := loadEvent(ctx, c)
	if !ok {
		return
	}
	if !isEventAttendee(ctx, event, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only attendees can read this event's chat"})
		return
	}

	cursor, err := database.EventMessages.Find(ctx, bson.M{"eventId": event.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	defer cursor.Close(ctx)

	var messages []models.EventMessage
	if err := cursor.All(ctx, &messages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode messages"})
		return
	}

	senderIDs := make([]primitive.ObjectID, len(messages))
	for i, m := range messages {
		senderIDs[i] = m.SenderID
	}
	summaries, err := userSummaries(ctx, senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch senders"})
		return
	}

	response := make([]map[string]interface{}, len(messages))
	for i, m := range messages {
		response[i] = map[string]interface{}{
			"id":        m.ID.Hex(),
			"eventId":   m.EventID.Hex(),
			"sender":    summaryOrFallback(summaries, m.SenderID),
			"text":      m.Text,
			"createdAt": m.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

func isEventAttendee(ctx context.Context, event *models.Event, userID primitive.ObjectID) bool {
	if event.OrganizerID == userID {
		return true
	}
	count, err := database.EventAttendees.CountDocuments(ctx,
		bson.M{"eventId": event.ID, "userId": userID})
	return err == nil && count > 0
}

func loadEvent(ctx context.Context, c *gin.Context) (*models.Event, bool) {
	eventID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return nil, false
	}

	var event models.Event
	err = database.Events.FindOne(ctx, bson.M{"_id": eventID}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return nil, false
	}
	return &event, true
}
