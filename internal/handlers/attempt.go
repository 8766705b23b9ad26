package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type AttemptHandler struct {
	log        *logger.Logger
	testingSvc services.TestingService
}

func NewAttemptHandler(log *logger.Logger, testingSvc services.TestingService) *AttemptHandler {
	return &AttemptHandler{
		log:        log.With("handler", "AttemptHandler"),
		testingSvc: testingSvc,
	}
}

type submitTestRequest struct {
	UserID   uint                       `json:"user_id" binding:"required"`
	ModuleID uint                       `json:"module_id" binding:"required"`
	Answers  []services.SubmittedAnswer `json:"answers" binding:"required"`
}

// POST /api/attempts
// Grade a submitted test and record the attempt.
func (h *AttemptHandler) SubmitTest(c *gin.Context) {
	var req submitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	result, err := h.testingSvc.SubmitTest(c.Request.Context(), req.UserID, req.ModuleID, req.Answers)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, result)
}

// GET /api/attempts/:id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID, ok := int64Param(c, "id")
	if !ok {
		return
	}
	attempt, err := h.testingSvc.GetAttempt(c.Request.Context(), attemptID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, attempt)
}

// GET /api/users/:id/attempts
func (h *AttemptHandler) ListUserAttempts(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	attempts, err := h.testingSvc.ListUserAttempts(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"attempts": attempts})
}

// GET /api/users/:id/modules/:moduleId/attempts
func (h *AttemptHandler) ListModuleAttempts(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	moduleID, ok := uintParam(c, "moduleId")
	if !ok {
		return
	}
	attempts, err := h.testingSvc.ListModuleAttempts(c.Request.Context(), userID, moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"attempts": attempts})
}
