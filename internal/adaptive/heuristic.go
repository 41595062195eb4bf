package adaptive

import (
	"math"

	"github.com/geoquiz/backend/internal/models"
)

// Accuracy thresholds for rule-based difficulty adjustment. Both
// comparisons are strict: accuracy exactly at a threshold leaves the
// difficulty unchanged.
const (
	raiseThreshold = 0.8
	lowerThreshold = 0.4
)

// HeuristicDifficulty is the rule-based fallback used whenever no
// trained model is available. It is a pure function of the snapshot.
func HeuristicDifficulty(snap models.PerformanceSnapshot) float64 {
	switch {
	case snap.Accuracy > raiseThreshold:
		return math.Min(models.MaxDifficulty, snap.CurrentDifficulty+0.5)
	case snap.Accuracy < lowerThreshold:
		return math.Max(models.MinDifficulty, snap.CurrentDifficulty-0.5)
	default:
		return snap.CurrentDifficulty
	}
}

// OptimalDifficulty derives the supervisory label for a training sample
// from the snapshot's accuracy. Every training-set builder must use this
// one function rather than re-deriving the bucketing.
func OptimalDifficulty(snap models.PerformanceSnapshot) float64 {
	switch {
	case snap.Accuracy > raiseThreshold:
		return math.Min(models.MaxDifficulty, snap.CurrentDifficulty+1.0)
	case snap.Accuracy < lowerThreshold:
		return math.Max(models.MinDifficulty, snap.CurrentDifficulty-1.0)
	default:
		return snap.CurrentDifficulty
	}
}
