package routes

import (
	"time"

	"ember/handlers"
	"ember/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:5500", "http://127.0.0.1:5500", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Session-Token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Auth endpoints take the brunt of abuse; everything else rides on JWT.
	authLimiter := middleware.NewIPRateLimiter(10, time.Minute)

	// Public routes
	public := router.Group("/api")
	public.Use(middleware.RateLimit(authLimiter))
	public.POST("/signup", handlers.Signup)
	public.POST("/login", handlers.Login)
	public.GET("/google/auth-url", handlers.GetGoogleAuthURL)
	public.GET("/google/callback", handlers.GoogleOAuthCallback)
	public.POST("/google-auth", handlers.GoogleAuthWithCredential)

	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())

	// Profile
	protected.GET("/me", handlers.GetMyProfile)
	protected.PUT("/me", handlers.UpdateMyProfile)
	protected.DELETE("/me", handlers.DeleteAccount)
	protected.GET("/user/:id", handlers.GetUser)
	protected.PUT("/me/location", handlers.UpdateMyLocation)
	protected.PUT("/me/status", handlers.UpdateUserStatus)
	protected.POST("/upload-photo", handlers.UploadPhoto)

	// Discovery
	protected.GET("/users/nearby", handlers.GetNearbyUsers)

	// Stories
	protected.POST("/story", handlers.CreateStory)
	protected.DELETE("/story/:id", handlers.DeleteStory)
	protected.GET("/stories/nearby", handlers.GetNearbyStories)
	protected.POST("/story/:id/like", handlers.LikeStory)
	protected.GET("/story/:id/likes", handlers.GetStoryLikes)

	// Conversations
	protected.POST("/conversations", handlers.GetOrCreateConversation)
	protected.GET("/conversations", handlers.GetConversations)
	protected.GET("/conversations/:id", handlers.GetConversation)
	protected.DELETE("/conversations/:id", handlers.DeleteConversation)

	// Messages
	protected.POST("/message", handlers.SendMessage)
	protected.GET("/messages/:conversationId", handlers.GetMessages)
	protected.DELETE("/message/:id", handlers.DeleteMessage)
	protected.POST("/message/:id/open", handlers.OpenViewOnce)
	protected.POST("/message/:id/read", handlers.MarkAsRead)
	protected.GET("/message/:id/album", handlers.GetAlbumPhotosForMessage)
	protected.POST("/message/:id/stop-sharing", handlers.StopSharingAlbum)
	protected.POST("/typing", handlers.SendTypingIndicator)

	// Events
	protected.POST("/events", handlers.CreateEvent)
	protected.GET("/events", handlers.GetEvents)
	protected.GET("/event/:id", handlers.GetEvent)
	protected.PUT("/event/:id", handlers.UpdateEvent)
	protected.DELETE("/event/:id", handlers.DeleteEvent)
	protected.POST("/event/:id/join", handlers.JoinEvent)
	protected.DELETE("/event/:id/leave", handlers.LeaveEvent)
	protected.GET("/event/:id/attendees", handlers.GetEventAttendees)
	protected.POST("/event/:id/messages", handlers.SendEventMessage)
	protected.GET("/event/:id/messages", handlers.GetEventMessages)

	// Albums
	protected.POST("/albums", handlers.CreateAlbum)
	protected.GET("/albums", handlers.GetMyAlbums)
	protected.GET("/album/:id", handlers.GetAlbum)
	protected.PUT("/album/:id", handlers.UpdateAlbum)
	protected.DELETE("/album/:id", handlers.DeleteAlbum)
	protected.POST("/album/:id/photos", handlers.AddAlbumPhoto)
	protected.DELETE("/album/:id/photo/:photoId", handlers.DeleteAlbumPhoto)

	// Taps, views, favorites
	protected.POST("/tap", handlers.SendTap)
	protected.GET("/taps", handlers.GetTaps)
	protected.GET("/views", handlers.GetViews)
	protected.POST("/favorite", handlers.AddFavorite)
	protected.DELETE("/favorite/:id", handlers.RemoveFavorite)
	protected.GET("/favorites", handlers.GetFavorites)

	// Places
	protected.GET("/places/autocomplete", handlers.PlacesAutocomplete)

	// Push subscriptions
	protected.POST("/subscribe", handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
