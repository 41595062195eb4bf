package adaptive

import (
	"math"

	"github.com/geoquiz/backend/internal/models"
)

// FeatureCount is the fixed width of the engineered feature vector.
// Changing it invalidates every persisted model snapshot.
const FeatureCount = 5

// ExtractFeatures maps a snapshot to the model's feature vector. Order
// is fixed; each component is normalized into [0,1]:
//
//	0: avg response time / 60s, capped at 1
//	1: overall accuracy
//	2: avg attempts / 5, capped at 1
//	3: current difficulty / 10
//	4: recent accuracy (last 10 attempts)
func ExtractFeatures(snap models.PerformanceSnapshot) []float64 {
	return []float64{
		math.Min(snap.AvgResponseTime/60.0, 1.0),
		snap.Accuracy,
		math.Min(snap.AvgAttempts/5.0, 1.0),
		snap.CurrentDifficulty / models.MaxDifficulty,
		snap.RecentAccuracy,
	}
}
