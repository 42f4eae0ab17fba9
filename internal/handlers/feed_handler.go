package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/services"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postService *services.PostService) *FeedHandler {
	return &FeedHandler{posts: postService}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns enriched feed posts for the current user, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page, limit := pageParams(c)
	skip := int64((page - 1) * limit)

	posts, totalItems, err := h.posts.Feed(c.Request().Context(), getUserIDFromContext(c), skip, int64(limit))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": posts,
		},
		"meta": pageMeta(page, limit, totalItems),
	})
}
