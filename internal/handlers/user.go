package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type UserHandler struct {
	log     *logger.Logger
	userSvc services.UserService
}

func NewUserHandler(log *logger.Logger, userSvc services.UserService) *UserHandler {
	return &UserHandler{
		log:     log.With("handler", "UserHandler"),
		userSvc: userSvc,
	}
}

// POST /api/users
// Register a new hire.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input services.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	user, err := h.userSvc.Create(c.Request.Context(), input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, user)
}

// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"users": users})
}

// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userSvc.GetByID(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, user)
}

// PATCH /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	user, err := h.userSvc.Update(c.Request.Context(), userID, input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, user)
}

// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.userSvc.Delete(c.Request.Context(), userID); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
