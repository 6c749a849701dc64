package handlers

import (
	"strings"

	"cinefund/internal/config"
	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/jwt"
	"cinefund/internal/pkg/response"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	store *sandbox.Store
	cfg   *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store *sandbox.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg}
}

// Register handles user registration
// @Summary Register new user
// @Description Register a user and return an access token
// @Tags Users
// @Accept json
// @Produce json
// @Param body body domain.RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/users/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req domain.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.store.Register(req)
	if err != nil {
		return storeError(c, err, "User not found")
	}

	token, err := h.issue(c, user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue token")
	}
	return response.Authenticated(c, fiber.StatusCreated, "User registered successfully", token, user)
}

// Login handles user login
// @Summary Login user
// @Description Authenticate by username or email and return an access token
// @Tags Users
// @Accept json
// @Produce json
// @Param body body domain.LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.UsernameOrEmail = strings.TrimSpace(req.UsernameOrEmail)
	if req.UsernameOrEmail == "" {
		return response.BadRequest(c, "Username or email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	user, err := h.store.Authenticate(req.UsernameOrEmail, req.Password)
	if err != nil {
		return storeError(c, err, "User not found")
	}

	token, err := h.issue(c, user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue token")
	}
	return response.Authenticated(c, fiber.StatusOK, "Login successful", token, user)
}

// Me returns the user behind the access token
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/users/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.store.User(currentUserID(c))
	if err != nil {
		return storeError(c, err, "User not found")
	}
	return response.Success(c, "", user)
}

func (h *AuthHandler) issue(c *fiber.Ctx, user domain.User) (string, error) {
	token, err := jwt.GenerateAccessToken(user.ID, user.Username, string(user.Role), h.cfg.JWT.Secret, h.cfg.JWT.AccessTokenMins)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.IsProd(),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return token, nil
}
