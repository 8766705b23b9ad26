package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type ReportHandler struct {
	log       *logger.Logger
	reportSvc services.ReportService
}

func NewReportHandler(log *logger.Logger, reportSvc services.ReportService) *ReportHandler {
	return &ReportHandler{
		log:       log.With("handler", "ReportHandler"),
		reportSvc: reportSvc,
	}
}

// GET /api/reports/onboarding/:userId
func (h *ReportHandler) OnboardingProgress(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	report, err := h.reportSvc.OnboardingProgressReport(c.Request.Context(), userID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, report)
}

// GET /api/reports/test-results?user_id=&module_id=
func (h *ReportHandler) TestResults(c *gin.Context) {
	userID, ok := uintQuery(c, "user_id")
	if !ok {
		return
	}
	moduleID, ok := uintQuery(c, "module_id")
	if !ok {
		return
	}
	entries, err := h.reportSvc.TestResultsReport(c.Request.Context(), userID, moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"results": entries})
}

// GET /api/reports/departments/:id
func (h *ReportHandler) Department(c *gin.Context) {
	deptID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	report, err := h.reportSvc.DepartmentReport(c.Request.Context(), deptID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, report)
}
