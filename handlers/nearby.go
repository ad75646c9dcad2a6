package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"ember/database"
	"ember/geo"
	"ember/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// discoveryRadiusMeters bounds the candidate query; generous on purpose,
	// the client never pages past maxDiscoveryResults anyway.
	discoveryRadiusMeters = 100 * 1000
	maxDiscoveryResults   = 200
)

// GetNearbyUsers returns candidate users ordered by distance from the
// caller's stored location (or an explicit lat/lng override), with the
// optional profile filters applied as a conjunction.
//
// The 2dsphere query handles radius, cap and distance order. The profile
// filters run here instead: the index query cannot combine several
// independent IN-clauses across unrelated fields in one pass.
func GetNearbyUsers(c *gin.Context) {
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
		// No recorded location and no override: nothing to rank against.
		c.JSON(http.StatusOK, []interface{}{})
		return
	}

	filter := geo.ParseFilter(c.Request.URL.Query())

	cursor, err := database.Users.Find(ctx, bson.M{
		"_id": bson.M{"$ne": userID},
		"location": bson.M{
			"$near": bson.M{
				"$geometry":    models.NewGeoPoint(anchorLat, anchorLng),
				"$maxDistance": discoveryRadiusMeters,
			},
		},
	}, options.Find().SetLimit(maxDiscoveryResults))
	if err != nil {
		log.Printf("[GetNearbyUsers] query error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	defer cursor.Close(ctx)

	var candidates []models.User
	if err := cursor.All(ctx, &candidates); err != nil {
		log.Printf("[GetNearbyUsers] decode error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	now := time.Now().Unix()
	results := make([]map[string]interface{}, 0, len(candidates))

	for i := range candidates {
		user := &candidates[i]

		if user.Privacy.HideProfileFromDiscovery {
			continue
		}
		if user.Location == nil {
			continue
		}
		if filter.Active() && !filter.Matches(user, now) {
			continue
		}

		results = append(results, discoveryEntry(user, anchorLat, anchorLng, now))
	}

	c.JSON(http.StatusOK, results)
}

// discoveryEntry renders one candidate for the discovery feed: the full
// public profile (every attribute the filters run on included), with age
// and distance annotations gated by the owner's privacy flags. Credentials
// and contact fields stay out.
func discoveryEntry(u *models.User, anchorLat, anchorLng float64, now int64) map[string]interface{} {
	entry := map[string]interface{}{
		"id":                 u.ID.Hex(),
		"name":               u.Name,
		"username":           u.Username,
		"avatar":             u.Avatar,
		"bio":                u.Bio,
		"status":             u.Status,
		"photos":             u.Photos,
		"bodyType":           u.BodyType,
		"ethnicity":          u.Ethnicity,
		"orientation":        u.Orientation,
		"position":           u.Position,
		"relationshipStatus": u.RelationshipStatus,
		"lookingFor":         u.LookingFor,
		"heightCm":           u.HeightCm,
		"weightKg":           u.WeightKg,
		"measurementSystem":  u.MeasurementSystem,
		"lastSeen":           u.LastSeen,
	}
	if age := u.Age(now); age >= 0 && !u.Privacy.HideAge {
		entry["age"] = age
	}
	if !u.Privacy.HideDistance && u.Location != nil {
		entry["distance"] = geo.DistanceMeters(anchorLat, anchorLng,
			u.Location.Latitude(), u.Location.Longitude())
	}
	return entry
}

// resolveAnchor picks the discovery anchor point: an explicit lat/lng
// override when both are present, otherwise the caller's stored location.
// found is false when neither exists.
func resolveAnchor(ctx context.Context, c *gin.Context, userID primitive.ObjectID) (lat, lng float64, found bool, err error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			return lat, lng, true, nil
		}
	}

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	if user.Location == nil {
		return 0, 0, false, nil
	}

	return user.Location.Latitude(), user.Location.Longitude(), true, nil
}

// nearbyUserIDs returns the IDs of users within the discovery radius of the
// given point, caller included. Shared with the nearby-stories feed.
func nearbyUserIDs(ctx context.Context, lat, lng float64) ([]primitive.ObjectID, error) {
	cursor, err := database.Users.Find(ctx, bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry":    models.NewGeoPoint(lat, lng),
				"$maxDistance": discoveryRadiusMeters,
			},
		},
	}, options.Find().SetLimit(maxDiscoveryResults).SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
