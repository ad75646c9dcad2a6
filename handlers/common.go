package handlers

import (
	"net/http"

	"ember/websocket"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shared state across handler files.

const fallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

const maxMessageLength = 4000

var wsManager *websocket.Manager
var vapidPrivateKey string

// PushSubscription stores one webpush subscription per user.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

// SetWebSocketManager sets the global WebSocket manager.
func SetWebSocketManager(manager *websocket.Manager) {
	wsManager = manager
}

// SetVAPIDPrivateKey sets the VAPID private key.
func SetVAPIDPrivateKey(key string) {
	vapidPrivateKey = key
}

// requireUserID reads the authenticated user ID set by the JWT middleware.
// Writes the 401 itself so call sites just return on !ok.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return primitive.NilObjectID, false
	}
	return userID, true
}
