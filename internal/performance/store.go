package performance

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/geoquiz/backend/internal/models"
)

// Store is the PostgreSQL Repository. Every write completes before the
// call returns, which gives the tracker its durability guarantee.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetStudent(id string) (*models.Student, error) {
	var st models.Student
	var topics pq.StringArray
	err := s.db.QueryRow(
		`SELECT id, current_difficulty, total_questions, correct_answers,
		        total_attempts, avg_response_time, last_quiz_date,
		        streak_days, topics_visited, created_at, updated_at
		 FROM students WHERE id = $1`,
		id,
	).Scan(&st.ID, &st.CurrentDifficulty, &st.TotalQuestions, &st.CorrectAnswers,
		&st.TotalAttempts, &st.AvgResponseTime, &st.LastQuizDate,
		&st.StreakDays, &topics, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	st.TopicsVisited = topics
	return &st, nil
}

func (s *Store) PutStudent(st *models.Student) error {
	_, err := s.db.Exec(
		`INSERT INTO students (id, current_difficulty, total_questions, correct_answers,
		                       total_attempts, avg_response_time, last_quiz_date,
		                       streak_days, topics_visited, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 ON CONFLICT (id) DO UPDATE SET
		    current_difficulty = EXCLUDED.current_difficulty,
		    total_questions    = EXCLUDED.total_questions,
		    correct_answers    = EXCLUDED.correct_answers,
		    total_attempts     = EXCLUDED.total_attempts,
		    avg_response_time  = EXCLUDED.avg_response_time,
		    last_quiz_date     = EXCLUDED.last_quiz_date,
		    streak_days        = EXCLUDED.streak_days,
		    topics_visited     = EXCLUDED.topics_visited,
		    updated_at         = NOW()`,
		st.ID, st.CurrentDifficulty, st.TotalQuestions, st.CorrectAnswers,
		st.TotalAttempts, st.AvgResponseTime, st.LastQuizDate,
		st.StreakDays, pq.Array(st.TopicsVisited),
	)
	if err != nil {
		return fmt.Errorf("put student: %w", err)
	}
	return nil
}

func (s *Store) AppendAttempt(rec models.AttemptRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO attempt_history (id, student_id, ts, question_id, difficulty,
		                              response_time_seconds, correct, attempts, topic)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.StudentID, rec.Timestamp, rec.QuestionID, rec.Difficulty,
		rec.ResponseTime, rec.Correct, rec.Attempts, rec.Topic,
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}

	// Evict everything older than the newest HistoryLimit rows.
	_, err = s.db.Exec(
		`DELETE FROM attempt_history
		 WHERE student_id = $1 AND id NOT IN (
		   SELECT id FROM attempt_history
		   WHERE student_id = $1
		   ORDER BY ts DESC, id DESC
		   LIMIT $2
		 )`,
		rec.StudentID, HistoryLimit,
	)
	if err != nil {
		return fmt.Errorf("trim attempt history: %w", err)
	}
	return nil
}

func (s *Store) Attempts(studentID string) ([]models.AttemptRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, student_id, ts, question_id, difficulty,
		        response_time_seconds, correct, attempts, topic
		 FROM attempt_history
		 WHERE student_id = $1
		 ORDER BY ts ASC, id ASC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []models.AttemptRecord
	for rows.Next() {
		var rec models.AttemptRecord
		var ts time.Time
		if err := rows.Scan(&rec.ID, &rec.StudentID, &ts, &rec.QuestionID, &rec.Difficulty,
			&rec.ResponseTime, &rec.Correct, &rec.Attempts, &rec.Topic); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.Timestamp = ts
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ListStudents() ([]models.Student, error) {
	rows, err := s.db.Query(
		`SELECT id, current_difficulty, total_questions, correct_answers,
		        total_attempts, avg_response_time, last_quiz_date,
		        streak_days, topics_visited, created_at, updated_at
		 FROM students ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		var st models.Student
		var topics pq.StringArray
		if err := rows.Scan(&st.ID, &st.CurrentDifficulty, &st.TotalQuestions, &st.CorrectAnswers,
			&st.TotalAttempts, &st.AvgResponseTime, &st.LastQuizDate,
			&st.StreakDays, &topics, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		st.TopicsVisited = topics
		out = append(out, st)
	}
	return out, rows.Err()
}
