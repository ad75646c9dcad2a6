package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
)

type uploadedAsset struct {
	URL      string
	PublicID string
}

// uploadToCloudinary pushes one image into the given folder and returns its
// secure URL plus the public ID needed to destroy it later.
func uploadToCloudinary(ctx context.Context, file io.Reader, folder, publicID string) (*uploadedAsset, error) {
	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		return nil, err
	}

	result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		PublicID:       publicID,
		Transformation: "c_limit,w_1080,h_1080,q_auto",
	})
	if err != nil {
		return nil, err
	}

	return &uploadedAsset{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// destroyCloudinaryAsset best-effort deletes a stored image. Used by the
// story sweep and the cascade deletes; a failure only leaves an orphaned
// asset behind, so it is logged and ignored.
func destroyCloudinaryAsset(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		log.Printf("[Cloudinary] configuration error: %v", err)
		return
	}

	if _, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		log.Printf("[Cloudinary] destroy %s failed: %v", publicID, err)
	}
}

// DestroyAsset exposes asset deletion to the background jobs.
func DestroyAsset(ctx context.Context, publicID string) {
	destroyCloudinaryAsset(ctx, publicID)
}

// UploadPhoto uploads a standalone image and returns its URL. Used by the
// client for profile photos and message attachments.
func UploadPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form data"})
		return
	}

	photoFile, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo file provided"})
		return
	}
	defer photoFile.Close()

	asset, err := uploadToCloudinary(ctx, photoFile, "ember/photos",
		userID.Hex()+"_"+time.Now().Format("20060102150405"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": asset.URL, "publicId": asset.PublicID})
}
