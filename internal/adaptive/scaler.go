package adaptive

import (
	"fmt"
	"math"
)

// StandardScaler centers features to zero mean and unit variance. It is
// fit on the training subset only and applied to every vector before
// inference. Fields are exported for model snapshot serialization.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// FitScaler computes per-feature mean and population standard deviation.
// A zero-variance feature gets std 1 so transforming it is a no-op
// rather than a division by zero.
func FitScaler(rows [][]float64) *StandardScaler {
	if len(rows) == 0 {
		return &StandardScaler{}
	}

	width := len(rows[0])
	means := make([]float64, width)
	stds := make([]float64, width)

	for _, row := range rows {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(rows))
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(len(rows)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	return &StandardScaler{Means: means, Stds: stds}
}

// Transform scales one feature vector. It rejects vectors whose width
// does not match the fitted parameters — this is the internal fault the
// predictor degrades on rather than surfacing.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Means) {
		return nil, fmt.Errorf("scaler fitted for %d features, got %d", len(s.Means), len(features))
	}
	out := make([]float64, len(features))
	for j, v := range features {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out, nil
}

// TransformAll scales a batch of feature vectors.
func (s *StandardScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
