package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteUser)
	g.PUT("/profile/push-token", h.UpdatePushToken)
	g.GET("/users", h.ListUsers)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

// GetUser retrieves another user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByID(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, getUserIDFromContext(c))
	if err != nil {
		return err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Age != 0 {
		user.Age = req.Age
	}
	if req.Image != nil {
		user.Image = *req.Image
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		return err
	}
	return success(c, http.StatusOK, user)
}

// UpdatePushToken stores the device token used for push notifications
func (h *UserHandler) UpdatePushToken(c echo.Context) error {
	var req models.PushTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.userRepository.UpdatePushToken(c.Request().Context(), getUserIDFromContext(c), req.Token); err != nil {
		return err
	}
	return message(c, "Push token updated")
}

// DeleteUser deletes the authenticated user's profile
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userRepository.DeleteUser(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers returns everyone but the caller, for starting a new chat
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": compactUsers(users)})
}

// SearchUsers searches for users by a query string (email or name)
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}
