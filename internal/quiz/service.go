package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/geoquiz/backend/internal/adaptive"
	"github.com/geoquiz/backend/internal/models"
	"github.com/geoquiz/backend/internal/performance"
)

// Service composes the tracker and the predictor into the quiz-facing
// operations. The model store is optional; without one, trained models
// simply live for the process lifetime.
type Service struct {
	tracker    *performance.Tracker
	predictor  *adaptive.Predictor
	modelStore *adaptive.ModelStore
}

func NewService(tracker *performance.Tracker, predictor *adaptive.Predictor, modelStore *adaptive.ModelStore) *Service {
	return &Service{
		tracker:    tracker,
		predictor:  predictor,
		modelStore: modelStore,
	}
}

// SubmitAttempt records a scored answer, recomputes the snapshot,
// predicts the next difficulty, and persists it as the student's
// current level. The caller has already validated and scored the
// answer itself.
func (s *Service) SubmitAttempt(req models.RecordAttemptRequest) (*models.RecordAttemptResponse, error) {
	rec := models.AttemptRecord{
		StudentID:    req.StudentID,
		QuestionID:   req.QuestionID,
		Difficulty:   req.Difficulty,
		ResponseTime: req.ResponseTime,
		Correct:      req.Correct,
		Attempts:     req.Attempts,
		Topic:        req.Topic,
	}
	if err := s.tracker.RecordAttempt(rec); err != nil {
		return nil, err
	}

	snap, err := s.tracker.Snapshot(req.StudentID)
	if err != nil {
		return nil, err
	}

	next := s.predictor.Predict(*snap)
	if err := s.tracker.UpdateDifficulty(req.StudentID, next); err != nil {
		log.Printf("[quiz] WARN: failed to persist difficulty for student %s: %v", req.StudentID, err)
	}

	return &models.RecordAttemptResponse{
		Correct:        req.Correct,
		NextDifficulty: next,
		Performance:    *snap,
	}, nil
}

// NextDifficulty predicts the difficulty for the student's next
// question without recording anything.
func (s *Service) NextDifficulty(studentID string) (*models.NextDifficultyResponse, error) {
	snap, err := s.tracker.Snapshot(studentID)
	if err != nil {
		return nil, err
	}
	return &models.NextDifficultyResponse{
		StudentID:           studentID,
		PredictedDifficulty: s.predictor.Predict(*snap),
		ModelTrained:        s.predictor.ModelInfo().Trained,
	}, nil
}

func (s *Service) Snapshot(studentID string) (*models.PerformanceSnapshot, error) {
	return s.tracker.Snapshot(studentID)
}

func (s *Service) Progress(studentID string) (*models.StudentProgress, error) {
	return s.tracker.Progress(studentID)
}

func (s *Service) Summary() ([]models.StudentSummary, error) {
	return s.tracker.Summary()
}

func (s *Service) RecentAttempts(studentID string, n int) ([]models.AttemptRecord, error) {
	return s.tracker.RecentAttempts(studentID, n)
}

// BuildTrainingSet labels the snapshot of every student with recorded
// activity. Label derivation goes through adaptive.OptimalDifficulty so
// every call site buckets identically.
func (s *Service) BuildTrainingSet() ([]models.TrainingSample, error) {
	snaps, err := s.tracker.AllSnapshots()
	if err != nil {
		return nil, fmt.Errorf("build training set: %w", err)
	}
	samples := make([]models.TrainingSample, 0, len(snaps))
	for _, snap := range snaps {
		if snap.TotalQuestions == 0 {
			continue
		}
		samples = append(samples, models.TrainingSample{
			Snapshot:          snap,
			OptimalDifficulty: adaptive.OptimalDifficulty(snap),
		})
	}
	return samples, nil
}

// TrainModel runs one operator-triggered training pass over the current
// student population and persists the fitted model if a store is wired.
func (s *Service) TrainModel() (*models.TrainResponse, error) {
	samples, err := s.BuildTrainingSet()
	if err != nil {
		return nil, err
	}

	report, err := s.predictor.Train(samples)
	if err != nil {
		return nil, err
	}

	if s.modelStore != nil {
		snapshot, err := s.predictor.Export()
		if err != nil {
			log.Printf("[quiz] WARN: export after train failed: %v", err)
		} else if err := s.modelStore.Save(snapshot); err != nil {
			log.Printf("[quiz] WARN: failed to persist model snapshot: %v", err)
		}
	}

	return &models.TrainResponse{
		Message: fmt.Sprintf("model trained on %d samples", report.Samples),
		Report:  *report,
		Model:   s.predictor.ModelInfo(),
	}, nil
}

func (s *Service) ModelInfo() models.ModelInfo {
	return s.predictor.ModelInfo()
}

// RestoreLatestModel reloads the newest persisted model at boot. Missing
// or incompatible snapshots leave the predictor untrained — the
// heuristic covers serving until the next train.
func (s *Service) RestoreLatestModel() error {
	if s.modelStore == nil {
		return nil
	}
	snapshot, err := s.modelStore.LoadLatest()
	if err != nil {
		return err
	}
	if snapshot == nil {
		log.Println("[quiz] no persisted model, starting untrained")
		return nil
	}
	if err := s.predictor.Restore(snapshot); err != nil {
		log.Printf("[quiz] WARN: persisted model rejected, starting untrained: %v", err)
		return nil
	}
	log.Printf("[quiz] model restored: %d estimators, saved %s",
		len(snapshot.Forest.Trees), snapshot.CreatedAt.Format(time.RFC3339))
	return nil
}

// StartAutoTrainWorker retrains on a fixed interval until the context
// is cancelled. Too-few-samples ticks are expected early on and only
// logged.
func (s *Service) StartAutoTrainWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("[quiz] Auto-train worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[quiz] Auto-train worker shutting down")
			return
		case <-ticker.C:
			if _, err := s.TrainModel(); err != nil {
				if errors.Is(err, adaptive.ErrInsufficientData) {
					log.Println("[quiz] auto-train skipped: not enough samples yet")
				} else {
					log.Printf("[quiz] auto-train failed: %v", err)
				}
			}
		}
	}
}
