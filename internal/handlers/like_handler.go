package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/services"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	posts *services.PostService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postService *services.PostService) *LikeHandler {
	return &LikeHandler{posts: postService}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// LikePost handles liking a post. Liking an already liked post succeeds
// without creating a second row.
func (h *LikeHandler) LikePost(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if _, err := h.posts.Like(ctx, userID, postID); err != nil {
		return err
	}
	_, count, err := h.posts.LikeStatus(ctx, userID, postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"liked": true, "likes_count": count})
}

// UnlikePost removes the caller's like row
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	ctx := c.Request().Context()
	userID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if err := h.posts.Unlike(ctx, userID, postID); err != nil {
		return err
	}
	_, count, err := h.posts.LikeStatus(ctx, userID, postID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"liked": false, "likes_count": count})
}

// GetLikesCountForPost returns the number of like rows for a post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	_, count, err := h.posts.LikeStatus(c.Request().Context(), getUserIDFromContext(c), c.Param("post_id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"likes_count": count})
}

// GetUserLikeStatusForPost reports whether the caller liked the post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	liked, count, err := h.posts.LikeStatus(c.Request().Context(), getUserIDFromContext(c), c.Param("post_id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"liked": liked, "likes_count": count})
}
