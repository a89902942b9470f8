package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/challenge/service"
)

type ChallengeHandler struct {
	service service.ChallengeService
}

func NewChallengeHandler(service service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		service: service,
	}
}

// RegisterRoutes регистрирует публичные маршруты; admin защищает изменения.
func (h *ChallengeHandler) RegisterRoutes(router *gin.RouterGroup, admin gin.HandlerFunc) {
	challenges := router.Group("/challenges")
	{
		challenges.GET("", h.ListChallenges)
		challenges.GET("/:id", h.GetChallenge)
	}

	// Админские маршруты
	manage := router.Group("/challenges")
	manage.Use(admin)
	{
		manage.POST("", h.CreateChallenge)
		manage.PATCH("/:id/active", h.SetActive)
	}
}

// @Summary Create challenge
// @Description Create a new challenge (admin only)
// @Tags challenges
// @Accept json
// @Produce json
// @Security AdminKey
// @Param challenge body models.CreateChallengeRequest true "Challenge"
// @Success 201 {object} models.ChallengeResponse "Created challenge"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Missing or wrong admin key"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /challenges [post]
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	var req models.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	challenge, err := h.service.CreateChallenge(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

// @Summary List challenges
// @Tags challenges
// @Produce json
// @Param active query bool false "Only challenges open for submissions"
// @Param chain query string false "Chain tag" example(avalanche)
// @Success 200 {object} models.ChallengesResponse "Challenges, newest first"
// @Failure 400 {object} middleware.ErrorResponse "Invalid query"
// @Router /challenges [get]
func (h *ChallengeHandler) ListChallenges(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(apperrors.NewInvalidInputError("active", "must be a boolean"))
			return
		}
		activeOnly = v
	}

	list, err := h.service.ListChallenges(c.Request.Context(), activeOnly, c.Query("chain"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Summary Get challenge by ID
// @Tags challenges
// @Produce json
// @Param id path string true "Challenge ID" format(uuid)
// @Success 200 {object} models.ChallengeResponse "Challenge"
// @Failure 400 {object} middleware.ErrorResponse "Invalid challenge ID"
// @Failure 404 {object} middleware.ErrorResponse "Challenge not found"
// @Router /challenges/{id} [get]
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	id, ok := parseChallengeID(c)
	if !ok {
		return
	}

	challenge, err := h.service.GetChallenge(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// @Summary Open or close challenge
// @Description Toggle whether a challenge accepts submissions (admin only)
// @Tags challenges
// @Accept json
// @Produce json
// @Security AdminKey
// @Param id path string true "Challenge ID" format(uuid)
// @Param status body models.SetActiveRequest true "New state"
// @Success 200 {object} models.ChallengeResponse "Updated challenge"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Missing or wrong admin key"
// @Failure 404 {object} middleware.ErrorResponse "Challenge not found"
// @Router /challenges/{id}/active [patch]
func (h *ChallengeHandler) SetActive(c *gin.Context) {
	id, ok := parseChallengeID(c)
	if !ok {
		return
	}

	var req models.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if err := validation.Struct(req); err != nil {
		_ = c.Error(err)
		return
	}

	challenge, err := h.service.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

func parseChallengeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
