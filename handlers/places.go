package handlers

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var placesHTTPClient = &http.Client{Timeout: 10 * time.Second}

// PlacesAutocomplete proxies location autocomplete to the Google Places
// API so the API key never reaches the client. The session token groups
// keystrokes of one search for billing; we mint one when the client
// doesn't send its own.
func PlacesAutocomplete(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Places search not configured"})
		return
	}

	input := c.Query("input")
	if input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing input parameter"})
		return
	}

	sessionToken := c.Query("sessiontoken")
	if sessionToken == "" {
		sessionToken = uuid.NewString()
	}

	params := url.Values{}
	params.Set("input", input)
	params.Set("types", "(cities)")
	params.Set("sessiontoken", sessionToken)
	params.Set("key", apiKey)

	resp, err := placesHTTPClient.Get(
		"https://maps.googleapis.com/maps/api/place/autocomplete/json?" + params.Encode())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Places search unavailable"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Places search unavailable"})
		return
	}

	c.Header("X-Session-Token", sessionToken)
	c.Data(resp.StatusCode, "application/json", body)
}
