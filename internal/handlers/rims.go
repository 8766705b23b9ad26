package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

var errMissingRimsKey = errors.New("either uid or email is required")

type RimsHandler struct {
	log     *logger.Logger
	rimsSvc services.RimsService
}

func NewRimsHandler(log *logger.Logger, rimsSvc services.RimsService) *RimsHandler {
	return &RimsHandler{
		log:     log.With("handler", "RimsHandler"),
		rimsSvc: rimsSvc,
	}
}

type rimsSyncRequest struct {
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
}

// POST /api/rims/sync
// Pull an employee record from RIMS and create/update the local user.
func (h *RimsHandler) SyncUser(c *gin.Context) {
	var req rimsSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	var (
		user *services.UserView
		err  error
	)
	switch {
	case req.UID != "":
		user, err = h.rimsSvc.SyncUserByUID(c.Request.Context(), req.UID)
	case req.Email != "":
		user, err = h.rimsSvc.SyncUserByEmail(c.Request.Context(), req.Email)
	default:
		RespondError(c, http.StatusBadRequest, "VALIDATION", errMissingRimsKey)
		return
	}
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, user)
}
