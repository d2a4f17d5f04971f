package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-platform/internal/storage"
)

// upload relays a multipart file to the object store and returns its public
// URL. No type or size validation beyond the multipart parse; orphaned blobs
// from abandoned post drafts are tolerated.
func (h *Handler) upload(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage service not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()

	key := uploadKey(h.keyPrefix, fileHeader.Filename)
	url, err := h.storage.UploadObject(c.Request.Context(), storage.UploadInput{
		Bucket:      h.bucket,
		Key:         key,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}

func uploadKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", prefix, name)
}
