package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"ember/database"
	"ember/middleware"
	"ember/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func issueToken(userID primitive.ObjectID) (string, error) {
	claims := &middleware.Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// newUser builds a user document with every profile field initialized so
// later $set updates never have to care whether a field exists.
func newUser(email, provider string) models.User {
	now := time.Now().Unix()
	return models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		AuthProvider: provider,
		CreatedAt:    now,
		LastSeen:     now,

		Username:          "user_" + primitive.NewObjectID().Hex()[:8],
		LookingFor:        []string{},
		Photos:            []string{},
		QuickReplies:      []string{},
		MeasurementSystem: "metric",
		Status:            "available",
	}
}

func Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existing models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	hashed := string(hashedPassword)

	user := newUser(req.Email, "email")
	user.PasswordHash = &hashed

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	tokenString, err := issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   tokenString,
		"userId":  user.ID.Hex(),
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if user.PasswordHash == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account uses Google sign-in"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	tokenString, err := issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	database.Users.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"lastSeen": time.Now().Unix()}})

	c.JSON(http.StatusOK, gin.H{
		"token":   tokenString,
		"userId":  user.ID.Hex(),
		"message": "Login successful",
	})
}

// DeleteAccount removes the user and everything hanging off it. The
// document store has no native cascades, so every dependent collection is
// cleaned up explicitly here.
func DeleteAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Conversations (and their messages) where the user participates.
	convFilter := bson.M{"$or": []bson.M{
		{"participant1": userID},
		{"participant2": userID},
	}}
	cursor, err := database.Conversations.Find(ctx, convFilter)
	if err == nil {
		var conversations []models.Conversation
		if err := cursor.All(ctx, &conversations); err == nil {
			for _, conv := range conversations {
				database.Messages.DeleteMany(ctx, bson.M{"conversationId": conv.ID})
			}
		}
		database.Conversations.DeleteMany(ctx, convFilter)
	}

	// Events the user organizes, with attendees and event chat.
	evCursor, err := database.Events.Find(ctx, bson.M{"organizerId": userID})
	if err == nil {
		var events []models.Event
		if err := evCursor.All(ctx, &events); err == nil {
			for _, ev := range events {
				database.EventAttendees.DeleteMany(ctx, bson.M{"eventId": ev.ID})
				database.EventMessages.DeleteMany(ctx, bson.M{"eventId": ev.ID})
			}
		}
		database.Events.DeleteMany(ctx, bson.M{"organizerId": userID})
	}
	database.EventAttendees.DeleteMany(ctx, bson.M{"userId": userID})

	// Albums with their photos.
	albCursor, err := database.Albums.Find(ctx, bson.M{"ownerId": userID})
	if err == nil {
		var albums []models.Album
		if err := albCursor.All(ctx, &albums); err == nil {
			for _, alb := range albums {
				deleteAlbumPhotos(ctx, alb.ID)
			}
		}
		database.Albums.DeleteMany(ctx, bson.M{"ownerId": userID})
	}

	// Stories and their backing images.
	stCursor, err := database.Stories.Find(ctx, bson.M{"authorId": userID})
	if err == nil {
		var stories []models.Story
		if err := stCursor.All(ctx, &stories); err == nil {
			for _, story := range stories {
				destroyCloudinaryAsset(ctx, story.PublicID)
			}
		}
		database.Stories.DeleteMany(ctx, bson.M{"authorId": userID})
	}

	// Signal edges in both directions, favorites, push subscriptions.
	edgeFilter := bson.M{"$or": []bson.M{
		{"fromUserId": userID},
		{"toUserId": userID},
	}}
	database.Taps.DeleteMany(ctx, edgeFilter)
	database.Views.DeleteMany(ctx, edgeFilter)
	database.StoryLikes.DeleteMany(ctx, edgeFilter)
	database.Favorites.DeleteMany(ctx, bson.M{"$or": []bson.M{
		{"userId": userID},
		{"targetUserId": userID},
	}})
	database.PushSubs.DeleteMany(ctx, bson.M{"userId": userID})

	result, err := database.Users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		log.Printf("[DeleteAccount] delete user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
