package adaptive

import (
	"math"
	"testing"

	"github.com/geoquiz/backend/internal/models"
)

func TestExtractFeatures(t *testing.T) {
	s := models.PerformanceSnapshot{
		AvgResponseTime:   30.0,
		Accuracy:          0.75,
		AvgAttempts:       2.5,
		CurrentDifficulty: 4.0,
		RecentAccuracy:    0.6,
	}

	got := ExtractFeatures(s)
	want := []float64{0.5, 0.75, 0.5, 0.4, 0.6}

	if len(got) != FeatureCount {
		t.Fatalf("ExtractFeatures returned %d features, want %d", len(got), FeatureCount)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("feature %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestExtractFeaturesCaps(t *testing.T) {
	// Slow responder and many retries both saturate at 1.
	s := models.PerformanceSnapshot{
		AvgResponseTime:   300.0,
		AvgAttempts:       12.0,
		CurrentDifficulty: 10.0,
	}

	got := ExtractFeatures(s)
	if got[0] != 1.0 {
		t.Errorf("response time feature = %f, want capped at 1.0", got[0])
	}
	if got[2] != 1.0 {
		t.Errorf("attempts feature = %f, want capped at 1.0", got[2])
	}
	if got[3] != 1.0 {
		t.Errorf("difficulty feature = %f, want 1.0", got[3])
	}
}
