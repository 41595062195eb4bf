package adaptive

import (
	"fmt"
	"time"
)

// ModelSchemaVersion identifies the persisted model layout. Bump it
// whenever the feature vector or tree encoding changes so stale blobs
// are rejected on reload instead of silently mispredicting.
const ModelSchemaVersion = 1

// ModelSnapshot is the versioned, fully self-describing persisted form
// of a fitted predictor: scaler parameters plus every tree node.
type ModelSnapshot struct {
	SchemaVersion int            `json:"schema_version"`
	FeatureCount  int            `json:"feature_count"`
	Scaler        StandardScaler `json:"scaler"`
	Forest        Forest         `json:"forest"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Export captures the fitted state for persistence. Fails with
// ErrUntrained when there is nothing to capture.
func (p *Predictor) Export() (*ModelSnapshot, error) {
	fm := p.fitted.Load()
	if fm == nil {
		return nil, ErrUntrained
	}
	return &ModelSnapshot{
		SchemaVersion: ModelSchemaVersion,
		FeatureCount:  FeatureCount,
		Scaler:        *fm.scaler,
		Forest:        *fm.forest,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Restore validates a persisted snapshot and installs it as the fitted
// state. An incompatible snapshot is rejected without touching the
// current state, trained or not.
func (p *Predictor) Restore(ms *ModelSnapshot) error {
	if ms.SchemaVersion != ModelSchemaVersion {
		return fmt.Errorf("model snapshot schema v%d, want v%d", ms.SchemaVersion, ModelSchemaVersion)
	}
	if ms.FeatureCount != FeatureCount {
		return fmt.Errorf("model snapshot has %d features, want %d", ms.FeatureCount, FeatureCount)
	}
	if len(ms.Scaler.Means) != FeatureCount || len(ms.Scaler.Stds) != FeatureCount {
		return fmt.Errorf("model snapshot scaler dimensions %d/%d, want %d",
			len(ms.Scaler.Means), len(ms.Scaler.Stds), FeatureCount)
	}
	if len(ms.Forest.Trees) == 0 {
		return fmt.Errorf("model snapshot has no trees")
	}
	for i := range ms.Forest.Trees {
		if len(ms.Forest.Trees[i].Nodes) == 0 {
			return fmt.Errorf("model snapshot tree %d is empty", i)
		}
	}

	scaler := ms.Scaler
	forest := ms.Forest
	p.fitted.Store(&fittedModel{scaler: &scaler, forest: &forest})
	return nil
}
