package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/internal/services"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	notifier         services.Notifier
	log              *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, notifier services.Notifier, log *zap.Logger) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		notifier:         notifier,
		log:              log.With(zap.String("component", "follows")),
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/follow-status", h.FollowStatus)
	g.GET("/users/:id/follow-counts", h.FollowCounts)
	g.GET("/users/:id/following", h.Following)
	g.GET("/users/:id/followers", h.Followers)
}

// FollowUser follows a user and notifies them the first time
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		return err
	}
	created, err := h.followRepository.CreateFollow(ctx, &models.Follow{
		FollowerID:  currentUserID,
		FollowingID: targetID,
	})
	if err != nil {
		return err
	}

	if created && h.notifier != nil {
		actor, err := h.userRepository.GetUserByID(ctx, currentUserID)
		if err == nil {
			_, err = h.notifier.Notify(ctx, &models.Notification{
				SenderID:   currentUserID,
				ReceiverID: targetID,
				Title:      actor.Name,
				Message:    "started following you",
				Type:       models.NotificationFollow,
			})
		}
		if err != nil {
			h.log.Warn("follow notification failed", zap.Uint("target_id", targetID), zap.Error(err))
		}
	}

	return success(c, http.StatusOK, echo.Map{"following": true})
}

// UnfollowUser unfollows a user. Unfollowing someone you do not follow is a no-op.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	err = h.followRepository.DeleteFollow(c.Request().Context(), getUserIDFromContext(c), targetID)
	if err != nil && !apperrors.IsNotFound(err) {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"following": false})
}

// FollowStatus reports whether the caller follows the user
func (h *FollowHandler) FollowStatus(c echo.Context) error {
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	following, err := h.followRepository.IsFollowing(c.Request().Context(), getUserIDFromContext(c), targetID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"following": following})
}

// FollowCounts returns follower and following counts, derived from follow rows
func (h *FollowHandler) FollowCounts(c echo.Context) error {
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	counts, err := h.followRepository.GetCounts(c.Request().Context(), targetID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, counts)
}

// Following lists the users the given user follows
func (h *FollowHandler) Following(c echo.Context) error {
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowing(c.Request().Context(), targetID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": compactUsers(users)})
}

// Followers lists the users following the given user
func (h *FollowHandler) Followers(c echo.Context) error {
	targetID, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	users, err := h.followRepository.GetFollowers(c.Request().Context(), targetID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": compactUsers(users)})
}

func compactUsers(users []models.User) []models.CompactUser {
	out := make([]models.CompactUser, len(users))
	for i := range users {
		out[i] = users[i].ToCompact()
	}
	return out
}
