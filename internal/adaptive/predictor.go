package adaptive

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/geoquiz/backend/internal/models"
)

// MinTrainingSamples is the smallest batch Train accepts.
const MinTrainingSamples = 10

const (
	trainSeed    = 42
	testFraction = 0.2
	modelType    = "random_forest_regressor"
)

var (
	// ErrInsufficientData is returned by Train when fewer than
	// MinTrainingSamples are supplied. No state changes.
	ErrInsufficientData = errors.New("adaptive: insufficient training data")

	// ErrUntrained is returned by Export when there is nothing to persist.
	ErrUntrained = errors.New("adaptive: model is not trained")
)

// fittedModel bundles everything a prediction needs. The predictor only
// ever swaps the whole bundle, never mutates a published one, so a
// concurrent Predict sees either the old or the new fit.
type fittedModel struct {
	scaler *StandardScaler
	forest *Forest
}

// Predictor wraps the trainable regressor behind the always-available
// heuristic. Zero state at construction: predictions fall back to the
// heuristic until the first successful Train or Restore.
type Predictor struct {
	cfg    ForestConfig
	fitted atomic.Pointer[fittedModel]
}

func NewPredictor() *Predictor {
	return &Predictor{cfg: DefaultForestConfig()}
}

// Predict returns the next difficulty for the snapshot, always within
// [1, 10]. It never fails outward: an untrained model or an internal
// inference fault resolves to the heuristic.
func (p *Predictor) Predict(snap models.PerformanceSnapshot) float64 {
	fm := p.fitted.Load()
	if fm == nil {
		return HeuristicDifficulty(snap)
	}

	scaled, err := fm.scaler.Transform(ExtractFeatures(snap))
	if err != nil {
		log.Printf("[adaptive] WARN: prediction degraded for student %s, using heuristic: %v", snap.StudentID, err)
		return HeuristicDifficulty(snap)
	}

	return models.ClampDifficulty(fm.forest.Predict(scaled))
}

// Train fits the scaler and forest on the labeled samples. The batch is
// split 80/20 with a fixed seed; the held-out subset only feeds the R²
// report, never the fit. On success the fitted state is swapped in
// atomically and the predictor reports trained from then on.
func (p *Predictor) Train(samples []models.TrainingSample) (*models.TrainReport, error) {
	if len(samples) < MinTrainingSamples {
		return nil, ErrInsufficientData
	}

	n := len(samples)
	X := make([][]float64, n)
	y := make([]float64, n)
	for i, s := range samples {
		X[i] = ExtractFeatures(s.Snapshot)
		y[i] = s.OptimalDifficulty
	}

	rng := rand.New(rand.NewSource(trainSeed))
	perm := rng.Perm(n)
	testN := int(math.Ceil(float64(n) * testFraction))

	var fitX, testX [][]float64
	var fitY, testY []float64
	for i, idx := range perm {
		if i < testN {
			testX = append(testX, X[idx])
			testY = append(testY, y[idx])
		} else {
			fitX = append(fitX, X[idx])
			fitY = append(fitY, y[idx])
		}
	}

	scaler := FitScaler(fitX)
	scaledFit, err := scaler.TransformAll(fitX)
	if err != nil {
		return nil, err
	}
	scaledTest, err := scaler.TransformAll(testX)
	if err != nil {
		return nil, err
	}

	forest := FitForest(scaledFit, fitY, p.cfg)

	report := &models.TrainReport{
		Samples:    n,
		TrainScore: forest.Score(scaledFit, fitY),
	}
	if len(testY) > 0 {
		report.TestScore = forest.Score(scaledTest, testY)
	}

	log.Printf("[adaptive] model trained: samples=%d estimators=%d train_r2=%.3f test_r2=%.3f",
		n, len(forest.Trees), report.TrainScore, report.TestScore)

	p.fitted.Store(&fittedModel{scaler: scaler, forest: forest})
	return report, nil
}

// ModelInfo reports the predictor's state without side effects.
func (p *Predictor) ModelInfo() models.ModelInfo {
	info := models.ModelInfo{
		ModelType:    modelType,
		FeatureCount: FeatureCount,
	}
	if fm := p.fitted.Load(); fm != nil {
		info.Trained = true
		info.EstimatorCount = len(fm.forest.Trees)
	}
	return info
}
