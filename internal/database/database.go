package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "quiz_user")
	password := getEnv("DB_PASSWORD", "quiz_password")
	dbname := getEnv("DB_NAME", "geo_quiz")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS students (
		id                 TEXT PRIMARY KEY,
		current_difficulty DOUBLE PRECISION NOT NULL DEFAULT 1.0
		                   CHECK (current_difficulty >= 1.0 AND current_difficulty <= 10.0),
		total_questions    INT NOT NULL DEFAULT 0,
		correct_answers    INT NOT NULL DEFAULT 0,
		total_attempts     INT NOT NULL DEFAULT 0,
		avg_response_time  DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_quiz_date     TEXT NOT NULL DEFAULT '',
		streak_days        INT NOT NULL DEFAULT 0,
		topics_visited     TEXT[] NOT NULL DEFAULT '{}',
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attempt_history (
		id                    TEXT PRIMARY KEY,
		student_id            TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		ts                    TIMESTAMP WITH TIME ZONE NOT NULL,
		question_id           TEXT NOT NULL,
		difficulty            DOUBLE PRECISION NOT NULL,
		response_time_seconds DOUBLE PRECISION NOT NULL CHECK (response_time_seconds >= 0),
		correct               BOOLEAN NOT NULL,
		attempts              INT NOT NULL CHECK (attempts >= 1),
		topic                 TEXT,
		created_at            TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_student ON attempt_history(student_id, ts DESC);
	CREATE INDEX IF NOT EXISTS idx_attempts_topic ON attempt_history(student_id, topic) WHERE topic IS NOT NULL;

	CREATE TABLE IF NOT EXISTS model_snapshots (
		id             BIGSERIAL PRIMARY KEY,
		schema_version INT NOT NULL,
		feature_count  INT NOT NULL,
		payload        JSONB NOT NULL,
		created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_model_snapshots_created ON model_snapshots(created_at DESC);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
