package handlers

import (
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anonto42/socialshop/backend/internal/middleware"
	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
	tokenTTL       time.Duration
	log            *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil,
// in which case /firebase-login answers 503.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client, jwtSecret string, tokenTTL time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
		log:            log.With(zap.String("component", "auth")),
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

func (h *AuthHandler) tokenResponse(c echo.Context, status int, user *models.User) error {
	token, err := middleware.IssueToken(h.jwtSecret, h.tokenTTL, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return success(c, status, echo.Map{"token": token, "user": user})
}

// Register handles user registration with an already verified Firebase UID
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByFirebaseUID(ctx, req.FirebaseUID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this Firebase UID already registered")
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	uid := req.FirebaseUID
	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Age:         req.Age,
		FirebaseUID: &uid,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return err
	}
	return success(c, http.StatusCreated, user)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return err
	}
	h.log.Info("user signed up", zap.Uint("user_id", user.ID))
	return h.tokenResponse(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}
	if user.Password == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account uses Firebase login")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	return h.tokenResponse(c, http.StatusOK, user)
}

// FirebaseLogin verifies a Firebase ID token, links or creates the local
// user and issues a local JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, firebaseUID)
	switch {
	case err == nil:
		if email != "" {
			user.Email = email
		}
		if name != "" {
			user.Name = name
		}
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return err
		}
	case apperrors.IsNotFound(err):
		user, err = h.linkOrCreate(c, firebaseUID, email, name, picture)
		if err != nil {
			return err
		}
	default:
		return err
	}

	return h.tokenResponse(c, http.StatusOK, user)
}

// linkOrCreate attaches firebaseUID to the user with the same email, or
// creates a new one.
func (h *AuthHandler) linkOrCreate(c echo.Context, firebaseUID, email, name, picture string) (*models.User, error) {
	ctx := c.Request().Context()
	if email != "" {
		user, err := h.userRepository.GetUserByEmail(ctx, email)
		if err == nil {
			user.FirebaseUID = &firebaseUID
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return nil, err
			}
			return user, nil
		}
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
	}

	user := &models.User{
		Name:        name,
		Email:       email,
		Image:       picture,
		FirebaseUID: &firebaseUID,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	h.log.Info("user created from firebase login", zap.Uint("user_id", user.ID))
	return user, nil
}
