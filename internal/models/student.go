package models

import (
	"math"
	"time"
)

// Difficulty bounds shared by the heuristic, the predictor, and the tracker.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// ClampDifficulty forces d into the valid difficulty range.
func ClampDifficulty(d float64) float64 {
	return math.Max(MinDifficulty, math.Min(MaxDifficulty, d))
}

// Student is the per-student aggregate row. Counters are running totals
// over the student's entire lifetime; the attempt log behind them is
// capped separately.
type Student struct {
	ID                string    `json:"id"`
	CurrentDifficulty float64   `json:"current_difficulty"`
	TotalQuestions    int       `json:"total_questions"`
	CorrectAnswers    int       `json:"correct_answers"`
	TotalAttempts     int       `json:"total_attempts"`
	AvgResponseTime   float64   `json:"avg_response_time"`
	LastQuizDate      string    `json:"last_quiz_date,omitempty"` // "2006-01-02", empty = never quizzed
	StreakDays        int       `json:"streak_days"`
	TopicsVisited     []string  `json:"topics_visited"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type StudentSummary struct {
	StudentID         string  `json:"student_id"`
	CurrentDifficulty float64 `json:"current_difficulty"`
	TotalQuestions    int     `json:"total_questions"`
	Accuracy          float64 `json:"accuracy"`
	StreakDays        int     `json:"streak_days"`
	TopicsVisited     int     `json:"topics_visited"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
