package adaptive

import (
	"math"
	"testing"

	"github.com/geoquiz/backend/internal/models"
)

func snap(accuracy, difficulty float64) models.PerformanceSnapshot {
	return models.PerformanceSnapshot{
		StudentID:         "s1",
		Accuracy:          accuracy,
		CurrentDifficulty: difficulty,
	}
}

func TestHeuristicDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		accuracy   float64
		difficulty float64
		want       float64
	}{
		{"high accuracy raises", 0.9, 5.0, 5.5},
		{"low accuracy lowers", 0.3, 5.0, 4.5},
		{"middling accuracy holds", 0.6, 5.0, 5.0},
		{"exactly 0.8 holds", 0.8, 5.0, 5.0},
		{"exactly 0.4 holds", 0.4, 5.0, 5.0},
		{"clamped at max", 1.0, 9.8, 10.0},
		{"clamped at min", 0.0, 1.2, 1.0},
		{"already at max", 0.95, 10.0, 10.0},
		{"already at min", 0.1, 1.0, 1.0},
	}

	for _, tt := range tests {
		got := HeuristicDifficulty(snap(tt.accuracy, tt.difficulty))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: HeuristicDifficulty(acc=%.2f, diff=%.1f) = %f, want %f",
				tt.name, tt.accuracy, tt.difficulty, got, tt.want)
		}
	}
}

func TestHeuristicDifficultyDeterministic(t *testing.T) {
	s := snap(0.85, 4.0)
	first := HeuristicDifficulty(s)
	for i := 0; i < 5; i++ {
		if got := HeuristicDifficulty(s); got != first {
			t.Fatalf("HeuristicDifficulty not deterministic: %f vs %f", got, first)
		}
	}
}

func TestOptimalDifficulty(t *testing.T) {
	tests := []struct {
		accuracy   float64
		difficulty float64
		want       float64
	}{
		{0.9, 5.0, 6.0},
		{0.3, 5.0, 4.0},
		{0.6, 5.0, 5.0},
		{0.8, 5.0, 5.0},
		{0.4, 5.0, 5.0},
		{1.0, 9.5, 10.0},
		{0.0, 1.5, 1.0},
	}

	for _, tt := range tests {
		got := OptimalDifficulty(snap(tt.accuracy, tt.difficulty))
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("OptimalDifficulty(acc=%.2f, diff=%.1f) = %f, want %f",
				tt.accuracy, tt.difficulty, got, tt.want)
		}
	}
}
