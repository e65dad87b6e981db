package controller

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	storageport "github.com/harshit91796/unseen-Price/internal/infrastructure/storage/port"
	chat "github.com/harshit91796/unseen-Price/internal/pkg/chat/application/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadMediaController handles attachment uploads (one controller per
// endpoint). The file is stored before any message references it; a stored
// object whose send never completes is simply never linked.
type UploadMediaController struct {
	Store    storageport.ObjectStore
	MaxBytes int64
}

func NewUploadMediaController(store storageport.ObjectStore, maxBytes int64) *UploadMediaController {
	return &UploadMediaController{Store: store, MaxBytes: maxBytes}
}

func (h *UploadMediaController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file form field is required"})
			return
		}
		if h.MaxBytes > 0 && header.Size > h.MaxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload limit"})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			mt, err := mimetype.DetectReader(file)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not detect file type"})
				return
			}
			contentType = mt.String()
			if _, err := file.Seek(0, 0); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rewind uploaded file"})
				return
			}
		}

		kind, ok := mediaKindFor(contentType)
		if !ok {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("unsupported media type %q", contentType)})
			return
		}

		key := fmt.Sprintf("chat-media/%d_%s%s", time.Now().UnixNano(), uuid.NewString(), filepath.Ext(header.Filename))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		url, err := h.Store.Put(ctx, key, contentType, file)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store file"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"url": url, "kind": string(kind)})
	}
}

func mediaKindFor(contentType string) (chat.MediaKind, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return chat.MediaKindImage, true
	case strings.HasPrefix(contentType, "video/"):
		return chat.MediaKindVideo, true
	case strings.HasPrefix(contentType, "audio/"):
		return chat.MediaKindAudio, true
	}
	return "", false
}
