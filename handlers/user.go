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

// ProfileUpdate carries the editable profile fields. Pointers distinguish
// "not sent" from "cleared".
type ProfileUpdate struct {
	Name          *string  `json:"name"`
	Username      *string  `json:"username"`
	Bio           *string  `json:"bio"`
	BirthDate     *int64   `json:"birthDate"`
	BirthLocation *string  `json:"birthLocation"`
	HeightCm      *float64 `json:"heightCm"`
	WeightKg      *float64 `json:"weightKg"`

	MeasurementSystem  *string   `json:"measurementSystem"`
	BodyType           *string   `json:"bodyType"`
	Ethnicity          *string   `json:"ethnicity"`
	Orientation        *string   `json:"orientation"`
	Position           *string   `json:"position"`
	RelationshipStatus *string   `json:"relationshipStatus"`
	LookingFor         *[]string `json:"lookingFor"`
	QuickReplies       *[]string `json:"quickReplies"`
	Photos             *[]string `json:"photos"`
	Avatar             *string   `json:"avatar"`

	Privacy *models.Privacy `json:"privacy"`
}

func GetMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func UpdateMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{}
	setIf := func(key string, val interface{}, sent bool) {
		if sent {
			set[key] = val
		}
	}

	setIf("name", deref(req.Name), req.Name != nil)
	setIf("username", deref(req.Username), req.Username != nil)
	setIf("bio", deref(req.Bio), req.Bio != nil)
	setIf("birthLocation", deref(req.BirthLocation), req.BirthLocation != nil)
	setIf("measurementSystem", deref(req.MeasurementSystem), req.MeasurementSystem != nil)
	setIf("bodyType", deref(req.BodyType), req.BodyType != nil)
	setIf("ethnicity", deref(req.Ethnicity), req.Ethnicity != nil)
	setIf("orientation", deref(req.Orientation), req.Orientation != nil)
	setIf("position", deref(req.Position), req.Position != nil)
	setIf("relationshipStatus", deref(req.RelationshipStatus), req.RelationshipStatus != nil)
	setIf("avatar", deref(req.Avatar), req.Avatar != nil)

	if req.BirthDate != nil {
		set["birthDate"] = *req.BirthDate
	}
	if req.HeightCm != nil {
		set["heightCm"] = *req.HeightCm
	}
	if req.WeightKg != nil {
		set["weightKg"] = *req.WeightKg
	}
	if req.LookingFor != nil {
		set["lookingFor"] = *req.LookingFor
	}
	if req.QuickReplies != nil {
		set["quickReplies"] = *req.QuickReplies
	}
	if req.Photos != nil {
		set["photos"] = *req.Photos
	}
	if req.Privacy != nil {
		set["privacy"] = *req.Privacy
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetUser returns another user's public profile and records a profile view
// edge when the viewer is someone else.
func GetUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	viewerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": targetID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("[GetUser] database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	if viewerID != targetID {
		go recordView(viewerID, targetID)
	}

	if user.Privacy.HideAge {
		user.BirthDate = 0
	}

	c.JSON(http.StatusOK, user)
}

func UpdateMyLocation(c *gin.Context) {
	var req struct {
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
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

	point := models.NewGeoPoint(*req.Latitude, *req.Longitude)
	_, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"location": point,
			"lastSeen": time.Now().Unix(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location updated"})
}

func UpdateUserStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=available busy offline"`
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

	_, err := database.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"status":   req.Status,
			"lastSeen": time.Now().Unix(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// userSummaries fetches id/name/avatar/status for a set of users, keyed by
// ID, with fallbacks for anyone since deleted.
func userSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]map[string]interface{}, error) {
	summaries := make(map[primitive.ObjectID]map[string]interface{})
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "avatar": 1, "status": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	for _, u := range users {
		name := u.Name
		if name == "" {
			name = "Unknown"
		}
		avatar := u.Avatar
		if avatar == "" {
			avatar = fallbackAvatar
		}
		summaries[u.ID] = map[string]interface{}{
			"id":     u.ID.Hex(),
			"name":   name,
			"avatar": avatar,
			"status": u.Status,
		}
	}
	return summaries, nil
}

func summaryOrFallback(summaries map[primitive.ObjectID]map[string]interface{}, id primitive.ObjectID) map[string]interface{} {
	if s, ok := summaries[id]; ok {
		return s
	}
	return map[string]interface{}{
		"id":     id.Hex(),
		"name":   "Unknown",
		"avatar": fallbackAvatar,
		"status": "offline",
	}
}
