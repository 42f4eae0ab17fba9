package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	posts *services.PostService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postService *services.PostService) *CommentHandler {
	return &CommentHandler{posts: postService}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment and notifies the post owner
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.AddComment(c.Request().Context(), getUserIDFromContext(c), c.Param("post_id"), req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, comment)
}

// GetCommentsByPostID lists a post's comments with their authors, oldest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	comments, err := h.posts.Comments(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"comments": comments, "comments_count": len(comments)})
}

// UpdateComment edits a comment; only its author may do so
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.posts.UpdateComment(c.Request().Context(), getUserIDFromContext(c), id, req.Content)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, comment)
}

// DeleteComment deletes a comment; its author or the post owner may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.DeleteComment(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return message(c, "Comment deleted successfully")
}
