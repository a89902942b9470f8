package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.GET("/:id/profile", h.GetUserProfile)
		users.GET("/wallet/:wallet", h.GetUserByWallet)
	}
}

// @Summary Register user
// @Description Register a participant by TON wallet address. Registering an existing wallet returns the stored user with status 200.
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.CreateUserRequest true "Wallet and optional profile"
// @Success 201 {object} models.UserResponse "Created user"
// @Success 200 {object} models.UserResponse "Existing user"
// @Failure 400 {object} middleware.ErrorResponse "Invalid wallet address"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	user, created, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, user)
}

// @Summary Get user by ID
// @Description Get user information by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} models.UserResponse "User data"
// @Failure 400 {object} middleware.ErrorResponse "Invalid user ID"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Get user profile
// @Description User with submission statistics and badges
// @Tags users
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} models.UserProfileResponse "Profile"
// @Failure 400 {object} middleware.ErrorResponse "Invalid user ID"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/{id}/profile [get]
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetUserProfile(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// @Summary Get user by wallet
// @Tags users
// @Produce json
// @Param wallet path string true "TON wallet address"
// @Success 200 {object} models.UserResponse "User data"
// @Failure 400 {object} middleware.ErrorResponse "Invalid wallet address"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/wallet/{wallet} [get]
func (h *UserHandler) GetUserByWallet(c *gin.Context) {
	user, err := h.service.GetUserByWallet(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
