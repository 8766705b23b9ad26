package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/onboardhq/onboarding-backend/internal/handlers"
	"github.com/onboardhq/onboarding-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins    []string
	TracingEnabled    bool
	UserHandler       *handlers.UserHandler
	DepartmentHandler *handlers.DepartmentHandler
	ModuleHandler     *handlers.ModuleHandler
	QuestionHandler   *handlers.QuestionHandler
	AttemptHandler    *handlers.AttemptHandler
	ProgressHandler   *handlers.ProgressHandler
	ReportHandler     *handlers.ReportHandler
	ActionLogHandler  *handlers.ActionLogHandler
	RimsHandler       *handlers.RimsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("onboarding-backend"))
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Users
		api.POST("/users", cfg.UserHandler.CreateUser)
		api.GET("/users", cfg.UserHandler.ListUsers)
		api.GET("/users/:id", cfg.UserHandler.GetUser)
		api.PATCH("/users/:id", cfg.UserHandler.UpdateUser)
		api.DELETE("/users/:id", cfg.UserHandler.DeleteUser)

		// Departments
		api.POST("/departments", cfg.DepartmentHandler.CreateDepartment)
		api.GET("/departments", cfg.DepartmentHandler.ListDepartments)
		api.GET("/departments/:id", cfg.DepartmentHandler.GetDepartment)
		api.PATCH("/departments/:id", cfg.DepartmentHandler.UpdateDepartment)
		api.DELETE("/departments/:id", cfg.DepartmentHandler.DeleteDepartment)

		// Training modules
		api.POST("/modules", cfg.ModuleHandler.CreateModule)
		api.GET("/modules", cfg.ModuleHandler.ListModules)
		api.GET("/modules/:id", cfg.ModuleHandler.GetModule)
		api.PATCH("/modules/:id", cfg.ModuleHandler.UpdateModule)
		api.DELETE("/modules/:id", cfg.ModuleHandler.DeleteModule)
		api.GET("/modules/:id/questions", cfg.QuestionHandler.ListModuleQuestions)
		api.GET("/modules/:id/test", cfg.QuestionHandler.GenerateTest)

		// Questions
		api.POST("/questions", cfg.QuestionHandler.CreateQuestion)
		api.GET("/questions/:id", cfg.QuestionHandler.GetQuestion)
		api.PATCH("/questions/:id", cfg.QuestionHandler.UpdateQuestion)
		api.DELETE("/questions/:id", cfg.QuestionHandler.DeleteQuestion)

		// Test attempts
		api.POST("/attempts", cfg.AttemptHandler.SubmitTest)
		api.GET("/attempts/:id", cfg.AttemptHandler.GetAttempt)
		api.GET("/users/:id/attempts", cfg.AttemptHandler.ListUserAttempts)
		api.GET("/users/:id/modules/:moduleId/attempts", cfg.AttemptHandler.ListModuleAttempts)

		// Progress
		api.GET("/users/:id/progress", cfg.ProgressHandler.GetUserProgress)
		api.GET("/users/:id/modules/:moduleId/progress", cfg.ProgressHandler.GetModuleProgress)
		api.POST("/users/:id/modules/:moduleId/read", cfg.ProgressHandler.MarkModuleRead)
		api.GET("/progress", cfg.ProgressHandler.ListProgress)

		// Reports
		api.GET("/reports/onboarding/:userId", cfg.ReportHandler.OnboardingProgress)
		api.GET("/reports/test-results", cfg.ReportHandler.TestResults)
		api.GET("/reports/departments/:id", cfg.ReportHandler.Department)

		// Action logs
		api.GET("/users/:id/action-logs", cfg.ActionLogHandler.ListUserActionLogs)
		api.GET("/action-logs", cfg.ActionLogHandler.ListActionLogs)
		api.POST("/action-logs", cfg.ActionLogHandler.CreateActionLog)

		// RIMS sync
		api.POST("/rims/sync", cfg.RimsHandler.SyncUser)
	}

	return router
}

// ParseOrigins splits a comma separated origin list from the environment.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}
