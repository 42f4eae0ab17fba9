package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/storage"
)

const maxUploadBytes = 50 << 20

// MediaHandler accepts uploads for posts, stories, profiles and products
type MediaHandler struct {
	uploader storage.Uploader
	log      *zap.Logger
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(uploader storage.Uploader, log *zap.Logger) *MediaHandler {
	return &MediaHandler{uploader: uploader, log: log.With(zap.String("component", "media"))}
}

// RegisterMediaRoutes registers the upload endpoint
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media", h.Upload)
}

// Upload stores the multipart "file" under a folder picked by the "kind"
// form field and returns its public URL
func (h *MediaHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if file.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file is too large")
	}
	kind := c.FormValue("kind")
	if kind == "" {
		kind = "post"
	}
	userID := getUserIDFromContext(c)

	key, err := storage.ObjectKey(kind, userID, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	url, err := h.uploader.Upload(c.Request().Context(), file, key)
	if err != nil {
		h.log.Error("upload failed", zap.Uint("user_id", userID), zap.String("key", key), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload file")
	}

	return success(c, http.StatusCreated, echo.Map{
		"url":        url,
		"media_type": storage.MediaType(file.Header.Get("Content-Type")),
	})
}
