package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/leaderboard"
)

type LeaderboardHandler struct {
	service *leaderboard.Service
}

func NewLeaderboardHandler(service *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/leaderboard", h.GetLeaderboard)
	router.GET("/users/:id/badges", h.GetUserBadges)
}

// @Summary Get leaderboard
// @Description Top participants by average score, ties by user id. Optionally limited to one chain.
// @Tags leaderboard
// @Produce json
// @Param chain query string false "Chain tag" example(avalanche)
// @Success 200 {array} leaderboard.Entry "Leaderboard"
// @Failure 400 {object} middleware.ErrorResponse "Invalid chain"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.service.GetLeaderboard(c.Request.Context(), c.Query("chain"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary Get user badges
// @Tags badges
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {array} models.Badge "Badges in catalog order"
// @Failure 400 {object} middleware.ErrorResponse "Invalid user ID"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id}/badges [get]
func (h *LeaderboardHandler) GetUserBadges(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("id", "must be a UUID"))
		return
	}

	badges, err := h.service.GetUserBadges(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, badges)
}
