package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type ProgressHandler struct {
	log         *logger.Logger
	progressSvc services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressSvc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:         log.With("handler", "ProgressHandler"),
		progressSvc: progressSvc,
	}
}

// GET /api/users/:id/progress
// Full per-module rollup with overall onboarding percentage.
func (h *ProgressHandler) GetUserProgress(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	progress, err := h.progressSvc.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, progress)
}

// GET /api/users/:id/modules/:moduleId/progress
func (h *ProgressHandler) GetModuleProgress(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	moduleID, ok := uintParam(c, "moduleId")
	if !ok {
		return
	}
	detail, err := h.progressSvc.GetModuleProgress(c.Request.Context(), userID, moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, detail)
}

// POST /api/users/:id/modules/:moduleId/read
// Mark module material as read; completes modules without questions.
func (h *ProgressHandler) MarkModuleRead(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	moduleID, ok := uintParam(c, "moduleId")
	if !ok {
		return
	}
	detail, err := h.progressSvc.MarkModuleRead(c.Request.Context(), userID, moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, detail)
}

// GET /api/progress?user_id=&module_id=
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	userID, ok := uintQuery(c, "user_id")
	if !ok {
		return
	}
	moduleID, ok := uintQuery(c, "module_id")
	if !ok {
		return
	}
	rows, err := h.progressSvc.ListProgress(c.Request.Context(), userID, moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"progress": rows})
}
