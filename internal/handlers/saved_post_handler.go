package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/services"
)

// SavedPostHandler handles bookmarking posts
type SavedPostHandler struct {
	posts *services.PostService
}

// NewSavedPostHandler creates a new SavedPostHandler
func NewSavedPostHandler(postService *services.PostService) *SavedPostHandler {
	return &SavedPostHandler{posts: postService}
}

// RegisterSavedPostRoutes registers saved post routes
func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
	g.GET("/saved-posts", h.GetSavedPosts)
}

// SavePost bookmarks a post for the caller
func (h *SavedPostHandler) SavePost(c echo.Context) error {
	if err := h.posts.Save(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"saved": true})
}

// UnsavePost removes a bookmark
func (h *SavedPostHandler) UnsavePost(c echo.Context) error {
	if err := h.posts.Unsave(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"saved": false})
}

// GetSavedPosts lists the caller's bookmarked posts, enriched like the feed
func (h *SavedPostHandler) GetSavedPosts(c echo.Context) error {
	posts, err := h.posts.SavedPosts(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}
