package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/services"
)

type QuestionHandler struct {
	log         *logger.Logger
	questionSvc services.QuestionService
}

func NewQuestionHandler(log *logger.Logger, questionSvc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:         log.With("handler", "QuestionHandler"),
		questionSvc: questionSvc,
	}
}

// POST /api/questions
// Add a question with its answer options to a module.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input services.CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	question, err := h.questionSvc.Create(c.Request.Context(), input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, question)
}

// GET /api/modules/:id/questions
func (h *QuestionHandler) ListModuleQuestions(c *gin.Context) {
	moduleID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.questionSvc.ListByModule(c.Request.Context(), moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}

// GET /api/modules/:id/test
// Generate a shuffled test with correctness flags stripped.
func (h *QuestionHandler) GenerateTest(c *gin.Context) {
	moduleID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.questionSvc.GenerateTest(c.Request.Context(), moduleID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"module_id": moduleID, "questions": questions})
}

// GET /api/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	question, err := h.questionSvc.GetByID(c.Request.Context(), questionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, question)
}

// PATCH /api/questions/:id
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var input services.UpdateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", err)
		return
	}
	question, err := h.questionSvc.Update(c.Request.Context(), questionID, input)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, question)
}

// DELETE /api/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.questionSvc.Delete(c.Request.Context(), questionID); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
