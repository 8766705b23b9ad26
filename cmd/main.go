package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/onboardhq/onboarding-backend/internal/db"
	"github.com/onboardhq/onboarding-backend/internal/handlers"
	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/observability"
	"github.com/onboardhq/onboarding-backend/internal/repos"
	"github.com/onboardhq/onboarding-backend/internal/seed"
	"github.com/onboardhq/onboarding-backend/internal/server"
	"github.com/onboardhq/onboarding-backend/internal/services"
	"github.com/onboardhq/onboarding-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "onboarding-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	deptRepo := repos.NewDepartmentRepo(thePG, log)
	roleRepo := repos.NewRoleRepo(thePG, log)
	moduleRepo := repos.NewModuleRepo(thePG, log)
	questionRepo := repos.NewQuestionRepo(thePG, log)
	attemptRepo := repos.NewTestAttemptRepo(thePG, log)
	progressRepo := repos.NewProgressRepo(thePG, log)
	actionLogRepo := repos.NewActionLogRepo(thePG, log)

	// Seed
	if utils.GetEnvAsBool("SEED_ON_START", false, log) {
		seeder := seed.NewSeeder(thePG, log, roleRepo, deptRepo, moduleRepo, questionRepo)
		if err := seeder.Run(ctx); err != nil {
			log.Error("Seeding failed", "error", err)
			os.Exit(1)
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	userService := services.NewUserService(thePG, log, userRepo, deptRepo, roleRepo)
	deptService := services.NewDepartmentService(thePG, log, deptRepo)
	moduleService := services.NewModuleService(thePG, log, moduleRepo, deptRepo)
	questionService := services.NewQuestionService(thePG, log, moduleRepo, questionRepo)
	actionLogService := services.NewActionLogService(thePG, log, actionLogRepo, userRepo)
	testingService := services.NewTestingService(thePG, log, moduleRepo, userRepo, attemptRepo, progressRepo, actionLogRepo)
	progressService := services.NewProgressService(thePG, log, userRepo, moduleRepo, progressRepo, attemptRepo, actionLogRepo)
	reportService := services.NewReportService(thePG, log, userRepo, deptRepo, progressRepo, attemptRepo, progressService)
	rimsClient := services.NewRimsHTTPClient(
		utils.GetEnv("RIMS_BASE_URL", "http://localhost:9090", log),
		utils.GetEnv("RIMS_API_KEY", "", log),
		time.Duration(utils.GetEnvAsInt("RIMS_TIMEOUT_SECONDS", 10, log))*time.Second,
		log,
	)
	rimsService := services.NewRimsService(thePG, log, rimsClient, userRepo, deptRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(log, userService)
	deptHandler := handlers.NewDepartmentHandler(log, deptService)
	moduleHandler := handlers.NewModuleHandler(log, moduleService)
	questionHandler := handlers.NewQuestionHandler(log, questionService)
	attemptHandler := handlers.NewAttemptHandler(log, testingService)
	progressHandler := handlers.NewProgressHandler(log, progressService)
	reportHandler := handlers.NewReportHandler(log, reportService)
	actionLogHandler := handlers.NewActionLogHandler(log, actionLogService)
	rimsHandler := handlers.NewRimsHandler(log, rimsService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:    server.ParseOrigins(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)),
		TracingEnabled:    otelShutdown != nil,
		UserHandler:       userHandler,
		DepartmentHandler: deptHandler,
		ModuleHandler:     moduleHandler,
		QuestionHandler:   questionHandler,
		AttemptHandler:    attemptHandler,
		ProgressHandler:   progressHandler,
		ReportHandler:     reportHandler,
		ActionLogHandler:  actionLogHandler,
		RimsHandler:       rimsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
