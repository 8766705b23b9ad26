package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type ActionLogHandler struct {
	log    *logger.Logger
	logSvc services.ActionLogService
}

func NewActionLogHandler(log *logger.Logger, logSvc services.ActionLogService) *ActionLogHandler {
	return &ActionLogHandler{
		log:    log.With("handler", "ActionLogHandler"),
		logSvc: logSvc,
	}
}

type createActionLogRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	ActionType string `json:"action_type" binding:"required"`
	Details    any    `json:"details"`
}

// POST /api/action-logs
func (h *ActionLogHandler) CreateActionLog(c *gin.Context) {
	var req createActionLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	if err := h.logSvc.Record(c.Request.Context(), req.UserID, req.ActionType, req.Details); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"recorded": true})
}

// GET /api/users/:id/action-logs
func (h *ActionLogHandler) ListUserActionLogs(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	logs, err := h.logSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"action_logs": logs})
}

// GET /api/action-logs?user_id=&action_type=
func (h *ActionLogHandler) ListActionLogs(c *gin.Context) {
	userID, ok := uintQuery(c, "user_id")
	if !ok {
		return
	}
	logs, err := h.logSvc.ListFiltered(c.Request.Context(), userID, c.Query("action_type"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"action_logs": logs})
}
