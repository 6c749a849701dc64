package handlers

import (
	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/pagination"
	"cinefund/internal/pkg/response"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	store *sandbox.Store
}

// NewUserHandler creates a new user handler
func NewUserHandler(store *sandbox.Store) *UserHandler {
	return &UserHandler{store: store}
}

// ListUsers handles listing all users
// @Summary List all users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users := h.store.Users(nil)
	if pagination.Requested(c) {
		return response.Success(c, "", pagination.NewResponse(users, pagination.GetParams(c)))
	}
	return response.List(c, users, len(users))
}

// GetUser handles getting a user by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	user, err := h.store.User(id)
	if err != nil {
		return storeError(c, err, "User not found")
	}
	return response.Success(c, "", user)
}

// GetUserByUsername handles getting a user by username
// @Summary Get user by username
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/username/{username} [get]
func (h *UserHandler) GetUserByUsername(c *fiber.Ctx) error {
	user, err := h.store.UserByUsername(c.Params("username"))
	if err != nil {
		return storeError(c, err, "User not found")
	}
	return response.Success(c, "", user)
}

// UsersByRole lists users with a role
// @Summary List users by role
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role path string true "Role"
// @Success 200 {object} response.Response
// @Router /api/users/role/{role} [get]
func (h *UserHandler) UsersByRole(c *fiber.Ctx) error {
	users := h.store.UsersByRole(c.Params("role"))
	return response.List(c, users, len(users))
}

// SearchUsers searches users by keyword
// @Summary Search users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param keyword query string true "Keyword"
// @Success 200 {object} response.Response
// @Router /api/users/search [get]
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	if keyword == "" {
		return response.BadRequest(c, "Keyword is required")
	}
	users := h.store.SearchUsers(keyword)
	return response.List(c, users, len(users))
}

// UpdateUser handles updating a user
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body domain.UserUpdate true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	var req domain.UserUpdate
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	user, err := h.store.UpdateUser(id, req)
	if err != nil {
		return storeError(c, err, "User not found")
	}
	return response.Success(c, "User updated successfully", user)
}

// UpdateWallet adds amount to the wallet; negative amounts withdraw
// @Summary Update wallet balance
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param amount query number true "Amount"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/users/{id}/wallet [put]
func (h *UserHandler) UpdateWallet(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	amount, ok := queryFloat(c, "amount")
	if !ok {
		return response.BadRequest(c, "Invalid amount")
	}
	user, err := h.store.AdjustWallet(id, amount)
	if err != nil {
		return storeError(c, err, "User not found")
	}
	return response.Success(c, "Wallet updated successfully", user)
}

// Invest invests from the user's wallet
// @Summary Invest from wallet
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body domain.InvestmentRequest true "Investment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/users/{id}/invest [post]
func (h *UserHandler) Invest(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	var req domain.InvestmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	inv, err := h.store.InvestFromWallet(id, req)
	if err != nil {
		return storeError(c, err, "User or movie not found")
	}
	return response.Created(c, "Investment successful", inv)
}
