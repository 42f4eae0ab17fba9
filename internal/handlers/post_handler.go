package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{posts: postService}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // all posts, or one user's with ?user_id=
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, post)
}

// GetPost returns a post with its author, like rows and comments
func (h *PostHandler) GetPost(c echo.Context) error {
	details, err := h.posts.Details(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, details)
}

// GetPosts retrieves multiple posts
func (h *PostHandler) GetPosts(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	skip, limit := skipParams(c)
	ctx := c.Request().Context()

	var (
		posts []models.FeedPost
		err   error
	)
	if raw := c.QueryParam("user_id"); raw != "" {
		ownerID, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid user_id")
		}
		posts, err = h.posts.UserPosts(ctx, viewerID, uint(ownerID), skip, limit)
	} else {
		posts, _, err = h.posts.Feed(ctx, viewerID, skip, limit)
	}
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"posts": posts})
}

// UpdatePost updates an existing post; only its author may do so
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Update(c.Request().Context(), getUserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, post)
}

// DeletePost deletes a post with its likes, comments and saves
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return err
	}
	return message(c, "Post deleted successfully")
}
