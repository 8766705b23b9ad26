package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type ModuleHandler struct {
	log       *logger.Logger
	moduleSvc services.ModuleService
}

func NewModuleHandler(log *logger.Logger, moduleSvc services.ModuleService) *ModuleHandler {
	return &ModuleHandler{
		log:       log.With("handler", "ModuleHandler"),
		moduleSvc: moduleSvc,
	}
}

// POST /api/modules
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	var input services.CreateModuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	module, err := h.moduleSvc.Create(c.Request.Context(), input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, module)
}

// GET /api/modules
func (h *ModuleHandler) ListModules(c *gin.Context) {
	modules, err := h.moduleSvc.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"modules": modules})
}

// GET /api/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	moduleID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	module, err := h.moduleSvc.GetByID(c.Request.Context(), moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, module)
}

// PATCH /api/modules/:id
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	moduleID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateModuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	module, err := h.moduleSvc.Update(c.Request.Context(), moduleID, input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, module)
}

// DELETE /api/modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	moduleID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.moduleSvc.Delete(c.Request.Context(), moduleID); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
