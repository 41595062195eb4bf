package models

import "time"

// AttemptRecord is one answered question. Records are immutable once
// appended to a student's history log.
type AttemptRecord struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	Timestamp    time.Time `json:"timestamp"`
	QuestionID   string    `json:"question_id"`
	Difficulty   float64   `json:"difficulty"`
	ResponseTime float64   `json:"response_time_seconds"`
	Correct      bool      `json:"correct"`
	Attempts     int       `json:"attempts"`
	Topic        *string   `json:"topic,omitempty"`
}

// PerformanceSnapshot is the derived, recomputed-on-demand view of one
// student's performance — the input to difficulty prediction.
type PerformanceSnapshot struct {
	StudentID         string  `json:"student_id"`
	CurrentDifficulty float64 `json:"current_difficulty"`
	Accuracy          float64 `json:"accuracy"`
	RecentAccuracy    float64 `json:"recent_accuracy"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	AvgAttempts       float64 `json:"avg_attempts"`
	TotalQuestions    int     `json:"total_questions"`
	TopicsVisited     int     `json:"topics_visited_count"`
	StreakDays        int     `json:"streak_days"`
}

// TrainingSample pairs a snapshot with its supervisory label. Samples
// are built transiently for one training call and never persisted.
type TrainingSample struct {
	Snapshot          PerformanceSnapshot `json:"snapshot"`
	OptimalDifficulty float64             `json:"optimal_difficulty"`
}

// ── Progress Types ───────────────────────────────────────

type TopicPerformance struct {
	Topic           string  `json:"topic"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	Accuracy        float64 `json:"accuracy"`
	AvgResponseTime float64 `json:"avg_response_time"`
	AvgAttempts     float64 `json:"avg_attempts"`
}

type DifficultyPoint struct {
	Date       string  `json:"date"`
	Difficulty float64 `json:"difficulty"`
	Correct    bool    `json:"correct"`
	Topic      string  `json:"topic,omitempty"`
}

type StudentProgress struct {
	StudentID             string                      `json:"student_id"`
	CurrentDifficulty     float64                     `json:"current_difficulty"`
	TotalQuestions        int                         `json:"total_questions"`
	CorrectAnswers        int                         `json:"correct_answers"`
	Accuracy              float64                     `json:"accuracy"`
	AvgResponseTime       float64                     `json:"avg_response_time"`
	StreakDays            int                         `json:"streak_days"`
	LastQuizDate          string                      `json:"last_quiz_date,omitempty"`
	TopicsVisited         []string                    `json:"topics_visited"`
	TopicsProgress        map[string]TopicPerformance `json:"topics_progress"`
	DifficultyProgression []DifficultyPoint           `json:"difficulty_progression"`
}
