package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/validation"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/submission/models"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/features/submission/service"
	domain "github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

type SubmissionHandler struct {
	service service.SubmissionService
}

func NewSubmissionHandler(service service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// RegisterRoutes регистрирует маршруты отправок. limit ограничивает частоту
// оценок, admin защищает ручной пересчёт прогресса.
func (h *SubmissionHandler) RegisterRoutes(router *gin.RouterGroup, limit, admin gin.HandlerFunc) {
	router.POST("/challenges/:id/submissions", limit, h.Submit)
	router.GET("/challenges/:id/submissions", h.ListChallengeSubmissions)
	router.GET("/users/:id/submissions", h.ListUserSubmissions)
	router.POST("/users/:id/progression", admin, h.EvaluateProgression)
	router.POST("/evaluate", limit, h.Evaluate)
}

// @Summary Submit code
// @Description Score the code, record the submission and, for a winner, award reputation and badges. Ledger sync failures are reported in sync_failures and do not fail the request.
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Challenge ID" format(uuid)
// @Param submission body models.SubmitRequest true "Submission"
// @Success 201 {object} service.RecordResult "Recorded submission"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 404 {object} middleware.ErrorResponse "User or challenge not found"
// @Failure 409 {object} middleware.ErrorResponse "Challenge is closed"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /challenges/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	challengeID, ok := parseID(c)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if err := validation.Struct(req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.service.RecordSubmission(c.Request.Context(), challengeID, req.UserID, req.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary List challenge submissions
// @Tags submissions
// @Produce json
// @Param id path string true "Challenge ID" format(uuid)
// @Success 200 {array} domain.Submission "Submissions, oldest first"
// @Failure 404 {object} middleware.ErrorResponse "Challenge not found"
// @Router /challenges/{id}/submissions [get]
func (h *SubmissionHandler) ListChallengeSubmissions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subs, err := h.service.ListChallengeSubmissions(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary List user submissions
// @Tags submissions
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Success 200 {array} domain.Submission "Submissions, oldest first"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id}/submissions [get]
func (h *SubmissionHandler) ListUserSubmissions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	subs, err := h.service.ListUserSubmissions(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// @Summary Re-evaluate badge progression
// @Description Run the progression engine over the stored history without a new submission (admin only)
// @Tags badges
// @Produce json
// @Security AdminKey
// @Param id path string true "User ID" format(uuid)
// @Success 200 {object} service.ProgressionResult "Applied transitions"
// @Failure 401 {object} middleware.ErrorResponse "Missing or wrong admin key"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id}/progression [post]
func (h *SubmissionHandler) EvaluateProgression(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.service.EvaluateProgression(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Evaluate code
// @Description Heuristic scoring without recording a submission. Unknown categories get a neutral evaluation.
// @Tags submissions
// @Accept json
// @Produce json
// @Param request body models.EvaluateRequest true "Code and category"
// @Success 200 {object} domain.Feedback "Evaluation"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Router /evaluate [post]
func (h *SubmissionHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if err := validation.Struct(req); err != nil {
		_ = c.Error(err)
		return
	}

	feedback, err := h.service.Evaluate(req.Code, domain.Category(req.Category))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
