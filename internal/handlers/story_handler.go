package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/services"
)

// StoryHandler handles HTTP requests related to stories
type StoryHandler struct {
	stories *services.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyService *services.StoryService) *StoryHandler {
	return &StoryHandler{stories: storyService}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.GET("/stories", h.GetStories)
	g.POST("/stories", h.CreateStory)
	g.GET("/stories/users/:id", h.GetUserStories)
	g.GET("/stories/:id", h.GetStory)
	g.POST("/stories/:id/seen", h.MarkAsSeen)
	g.GET("/stories/:id/seen", h.HasSeen)
}

// GetStories returns stories of followed users and the caller, grouped by owner
func (h *StoryHandler) GetStories(c echo.Context) error {
	feed, err := h.stories.Feed(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, feed)
}

// GetUserStories returns one owner's live stories with seen flags
func (h *StoryHandler) GetUserStories(c echo.Context) error {
	ownerID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	group, err := h.stories.UserStories(c.Request().Context(), getUserIDFromContext(c), ownerID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, group)
}

// GetStory returns a single story
func (h *StoryHandler) GetStory(c echo.Context) error {
	story, err := h.stories.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, story)
}

// CreateStory publishes a story that expires after the configured TTL
func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, story)
}

// MarkAsSeen records that the caller viewed a story. Repeating it is a no-op.
func (h *StoryHandler) MarkAsSeen(c echo.Context) error {
	if err := h.stories.MarkSeen(c.Request().Context(), c.Param("id"), getUserIDFromContext(c)); err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"seen": true})
}

// HasSeen reports whether the caller viewed a story
func (h *StoryHandler) HasSeen(c echo.Context) error {
	seen, err := h.stories.HasSeen(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"seen": seen})
}
