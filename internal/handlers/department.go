package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type DepartmentHandler struct {
	log     *logger.Logger
	deptSvc services.DepartmentService
}

func NewDepartmentHandler(log *logger.Logger, deptSvc services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{
		log:     log.With("handler", "DepartmentHandler"),
		deptSvc: deptSvc,
	}
}

// POST /api/departments
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var input services.CreateDepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	dept, err := h.deptSvc.Create(c.Request.Context(), input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, dept)
}

// GET /api/departments
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"departments": depts})
}

// GET /api/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	deptID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	dept, err := h.deptSvc.GetByID(c.Request.Context(), deptID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, dept)
}

// PATCH /api/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	deptID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateDepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	dept, err := h.deptSvc.Update(c.Request.Context(), deptID, input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, dept)
}

// DELETE /api/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	deptID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.deptSvc.Delete(c.Request.Context(), deptID); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
