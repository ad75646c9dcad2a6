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

func CreateAlbum(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required,max=100"`
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

	album := models.Album{
		ID:        primitive.NewObjectID(),
		OwnerID:   userID,
		Title:     req.Title,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.Albums.InsertOne(ctx, album); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create album"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": album.ID.Hex()})
}

func GetMyAlbums(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.Albums.Find(ctx, bson.M{"ownerId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
		return
	}
	defer cursor.Close(ctx)

	var albums []models.Album
	if err := cursor.All(ctx, &albums); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode albums"})
		return
	}

	response := make([]map[string]interface{}, len(albums))
	for i := range albums {
		album := &albums[i]
		count, _ := database.AlbumPhotos.CountDocuments(ctx, bson.M{"albumId": album.ID})
		response[i] = map[string]interface{}{
			"id":         album.ID.Hex(),
			"title":      album.Title,
			"cover":      albumCoverURL(ctx, album),
			"photoCount": count,
			"createdAt":  album.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

func GetAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	album, ok := loadOwnedAlbum(ctx, c, userID)
	if !ok {
		return
	}

	photos, err := albumPhotos(ctx, album.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        album.ID.Hex(),
		"title":     album.Title,
		"createdAt": album.CreatedAt,
		"photos":    photos,
	})
}

func UpdateAlbum(c *gin.Context) {
	var req struct {
		Title        *string `json:"title"`
		CoverPhotoID *string `json:"coverPhotoId"`
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

	album, ok := loadOwnedAlbum(ctx, c, userID)
	if !ok {
		return
	}

	set := bson.M{}
	if req.Title != nil && *req.Title != "" {
		set["title"] = *req.Title
	}
	if req.CoverPhotoID != nil {
		coverID, err := primitive.ObjectIDFromHex(*req.CoverPhotoID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cover photo ID"})
			return
		}
		count, err := database.AlbumPhotos.CountDocuments(ctx, bson.M{"_id": coverID, "albumId": album.ID})
		if err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cover photo is not in this album"})
			return
		}
		set["coverPhotoId"] = coverID
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No changes to update"})
		return
	}

	if _, err := database.Albums.UpdateOne(ctx, bson.M{"_id": album.ID}, bson.M{"$set": set}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update album"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Album updated"})
}

// DeleteAlbum removes an album and cascades to its photos (documents and
// stored images).
func DeleteAlbum(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	album, ok := loadOwnedAlbum(ctx, c, userID)
	if !ok {
		return
	}

	if err := deleteAlbumPhotos(ctx, album.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photos"})
		return
	}

	if _, err := database.Albums.DeleteOne(ctx, bson.M{"_id": album.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete album"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Album deleted"})
}

func AddAlbumPhoto(c *gin.Context) {
	var req struct {
		URL      string `json:"url" binding:"required"`
		PublicID string `json:"publicId"`
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

	album, ok := loadOwnedAlbum(ctx, c, userID)
	if !ok {
		return
	}

	photo := models.AlbumPhoto{
		ID:        primitive.NewObjectID(),
		AlbumID:   album.ID,
		URL:       req.URL,
		PublicID:  req.PublicID,
		CreatedAt: time.Now().Unix(),
	}

	if _, err := database.AlbumPhotos.InsertOne(ctx, photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add photo"})
		return
	}

	// First photo becomes the cover.
	if album.CoverPhotoID == nil {
		database.Albums.UpdateOne(ctx, bson.M{"_id": album.ID},
			bson.M{"$set": bson.M{"coverPhotoId": photo.ID}})
	}

	c.JSON(http.StatusCreated, gin.H{"id": photo.ID.Hex()})
}

func DeleteAlbumPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	photoID, err := primitive.ObjectIDFromHex(c.Param("photoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	album, ok := loadOwnedAlbum(ctx, c, userID)
	if !ok {
		return
	}

	var photo models.AlbumPhoto
	err = database.AlbumPhotos.FindOne(ctx, bson.M{"_id": photoID, "albumId": album.ID}).Decode(&photo)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photo"})
		return
	}

	if _, err := database.AlbumPhotos.DeleteOne(ctx, bson.M{"_id": photoID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
		return
	}
	destroyCloudinaryAsset(ctx, photo.PublicID)

	if album.CoverPhotoID != nil && *album.CoverPhotoID == photoID {
		database.Albums.UpdateOne(ctx, bson.M{"_id": album.ID},
			bson.M{"$unset": bson.M{"coverPhotoId": ""}})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

// GetAlbumPhotosForMessage resolves an album-share message for either
// participant: the photo list while the share is live, or a locked stub
// once expired.
func GetAlbumPhotosForMessage(c *gin.Context) {
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

	msg, ok := loadAlbumShare(ctx, c, messageID, userID)
	if !ok {
		return
	}

	if msg.AlbumShareExpired(time.Now().Unix()) {
		c.JSON(http.StatusOK, gin.H{
			"locked": true,
			"title":  msg.AlbumTitle,
		})
		return
	}

	photos, err := albumPhotos(ctx, *msg.AlbumID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locked":    false,
		"title":     msg.AlbumTitle,
		"expiresAt": msg.AlbumExpiresAt,
		"photos":    photos,
	})
}

// StopSharingAlbum force-expires an album share by moving its expiry to
// now. Owner only; a share that already ran out rejects the call.
func StopSharingAlbum(c *gin.Context) {
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

	msg, ok := loadAlbumShare(ctx, c, messageID, userID)
	if !ok {
		return
	}

	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the sender can stop sharing"})
		return
	}

	now := time.Now().Unix()
	if msg.AlbumShareExpired(now) {
		c.JSON(http.StatusConflict, gin.H{"error": "Share already expired"})
		return
	}

	if _, err := database.Messages.UpdateOne(ctx, bson.M{"_id": messageID},
		bson.M{"$set": bson.M{"albumExpiresAt": now}}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stop sharing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sharing stopped"})
}

func loadAlbumShare(ctx context.Context, c *gin.Context, messageID, userID primitive.ObjectID) (*models.Message, bool) {
	var msg models.Message
	err := database.Messages.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch message"})
		return nil, false
	}
	if msg.AlbumID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is not an album share"})
		return nil, false
	}

	if _, ok := loadConversationForUser(ctx, c, msg.ConversationID, userID); !ok {
		return nil, false
	}
	return &msg, true
}

// loadOwnedAlbum fetches the album from the :id path param and enforces
// ownership.
func loadOwnedAlbum(ctx context.Context, c *gin.Context, userID primitive.ObjectID) (*models.Album, bool) {
	albumID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return nil, false
	}

	var album models.Album
	err = database.Albums.FindOne(ctx, bson.M{"_id": albumID}).Decode(&album)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Album not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch album"})
		return nil, false
	}
	if album.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this album"})
		return nil, false
	}
	return &album, true
}

func albumPhotos(ctx context.Context, albumID primitive.ObjectID) ([]models.AlbumPhoto, error) {
	cursor, err := database.AlbumPhotos.Find(ctx, bson.M{"albumId": albumID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	photos := []models.AlbumPhoto{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func albumCoverURL(ctx context.Context, album *models.Album) string {
	if album.CoverPhotoID == nil {
		return ""
	}
	var photo models.AlbumPhoto
	if err := database.AlbumPhotos.FindOne(ctx, bson.M{"_id": *album.CoverPhotoID}).Decode(&photo); err != nil {
		return ""
	}
	return photo.URL
}

// deleteAlbumPhotos removes every photo document in an album along with the
// stored images. Shared by album delete and account delete.
func deleteAlbumPhotos(ctx context.Context, albumID primitive.ObjectID) error {
	photos, err := albumPhotos(ctx, albumID)
	if err != nil {
		return err
	}
	for i := range photos {
		destroyCloudinaryAsset(ctx, photos[i].PublicID)
	}
	_, err = database.AlbumPhotos.DeleteMany(ctx, bson.M{"albumId": albumID})
	return err
}
