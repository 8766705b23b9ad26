package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/onboardhq/onboarding-backend/internal/logger"
	"github.com/onboardhq/onboarding-backend/internal/types"
	"github.com/onboardhq/onboarding-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "onboarding", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Department{},
		&types.Role{},
		&types.User{},
		&types.Module{},
		&types.Question{},
		&types.AnswerOption{},
		&types.UserModuleProgress{},
		&types.TestAttempt{},
		&types.ActionLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_users_department_id",
			sql: `ALTER TABLE "users" ADD CONSTRAINT "fk_users_department_id"
				FOREIGN KEY ("department_id") REFERENCES "departments"("id")`,
		},
		{
			name: "fk_users_mentor_id",
			sql: `ALTER TABLE "users" ADD CONSTRAINT "fk_users_mentor_id"
				FOREIGN KEY ("mentor_id") REFERENCES "users"("id") ON DELETE SET NULL`,
		},
		{
			name: "fk_questions_module_id",
			sql: `ALTER TABLE "questions" ADD CONSTRAINT "fk_questions_module_id"
				FOREIGN KEY ("module_id") REFERENCES "modules"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_answer_options_question_id",
			sql: `ALTER TABLE "answer_options" ADD CONSTRAINT "fk_answer_options_question_id"
				FOREIGN KEY ("question_id") REFERENCES "questions"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_progress_user_id",
			sql: `ALTER TABLE "user_module_progress" ADD CONSTRAINT "fk_progress_user_id"
				FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_attempts_user_id",
			sql: `ALTER TABLE "test_attempts" ADD CONSTRAINT "fk_attempts_user_id"
				FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`,
		},
		{
			name: "fk_action_logs_user_id",
			sql: `ALTER TABLE "action_logs" ADD CONSTRAINT "fk_action_logs_user_id"
				FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`,
		},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("failed to check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
