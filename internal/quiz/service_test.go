package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/geoquiz/backend/internal/adaptive"
	"github.com/geoquiz/backend/internal/models"
	"github.com/geoquiz/backend/internal/performance"
)

func newTestService() (*Service, *performance.Tracker) {
	tracker := performance.NewTracker(performance.NewMemoryRepository())
	return NewService(tracker, adaptive.NewPredictor(), nil), tracker
}

func submit(t *testing.T, s *Service, studentID string, correct bool) *models.RecordAttemptResponse {
	t.Helper()
	resp, err := s.SubmitAttempt(models.RecordAttemptRequest{
		StudentID:    studentID,
		QuestionID:   "q1",
		Difficulty:   3.0,
		ResponseTime: 8.0,
		Correct:      correct,
		Attempts:     1,
	})
	if err != nil {
		t.Fatalf("SubmitAttempt failed: %v", err)
	}
	return resp
}

func TestHeuristicAdaptationLoop(t *testing.T) {
	tracker := performance.NewTracker(performance.NewMemoryRepository())

	// Five straight correct answers at the starting difficulty: accuracy
	// 1.0 means the fallback raises by exactly one step.
	for i := 0; i < 5; i++ {
		err := tracker.RecordAttempt(models.AttemptRecord{
			StudentID: "s1", QuestionID: "q1", Difficulty: 1.0,
			ResponseTime: 5.0, Correct: true, Attempts: 1,
		})
		if err != nil {
			t.Fatalf("RecordAttempt failed: %v", err)
		}
	}
	snap, err := tracker.Snapshot("s1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if got := adaptive.HeuristicDifficulty(*snap); got != 1.5 {
		t.Errorf("difficulty after 5/5 correct = %f, want 1.5", got)
	}

	// Five misses drag accuracy to 0.5, inside the hold band.
	for i := 0; i < 5; i++ {
		tracker.RecordAttempt(models.AttemptRecord{
			StudentID: "s1", QuestionID: "q1", Difficulty: 1.0,
			ResponseTime: 5.0, Correct: false, Attempts: 1,
		})
	}
	snap, _ = tracker.Snapshot("s1")
	if got := adaptive.HeuristicDifficulty(*snap); got != snap.CurrentDifficulty {
		t.Errorf("difficulty at 0.5 accuracy = %f, want unchanged %f", got, snap.CurrentDifficulty)
	}
}

func TestSubmitAttemptPersistsNextDifficulty(t *testing.T) {
	s, tracker := newTestService()

	resp := submit(t, s, "s1", true)
	if resp.NextDifficulty < models.MinDifficulty || resp.NextDifficulty > models.MaxDifficulty {
		t.Fatalf("NextDifficulty = %f, out of range", resp.NextDifficulty)
	}

	snap, err := tracker.Snapshot("s1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.CurrentDifficulty != resp.NextDifficulty {
		t.Errorf("persisted difficulty = %f, response said %f", snap.CurrentDifficulty, resp.NextDifficulty)
	}

	// With consistent success the persisted difficulty climbs each round.
	prev := resp.NextDifficulty
	for i := 0; i < 4; i++ {
		resp = submit(t, s, "s1", true)
		if resp.NextDifficulty < prev {
			t.Errorf("difficulty dropped from %f to %f on another correct answer", prev, resp.NextDifficulty)
		}
		prev = resp.NextDifficulty
	}
}

func TestSubmitAttemptRejectsMalformed(t *testing.T) {
	s, _ := newTestService()

	_, err := s.SubmitAttempt(models.RecordAttemptRequest{
		StudentID: "s1", QuestionID: "q1", ResponseTime: -2.0, Attempts: 1,
	})
	if !errors.Is(err, performance.ErrMalformedRecord) {
		t.Errorf("SubmitAttempt err = %v, want ErrMalformedRecord", err)
	}
}

func TestNextDifficultyUnknownStudent(t *testing.T) {
	s, _ := newTestService()

	if _, err := s.NextDifficulty("nobody"); !errors.Is(err, performance.ErrStudentNotFound) {
		t.Errorf("NextDifficulty(unknown) err = %v, want ErrStudentNotFound", err)
	}
}

func TestTrainModelNeedsEnoughStudents(t *testing.T) {
	s, _ := newTestService()

	for i := 0; i < adaptive.MinTrainingSamples-1; i++ {
		submit(t, s, fmt.Sprintf("s%d", i), true)
	}

	if _, err := s.TrainModel(); !errors.Is(err, adaptive.ErrInsufficientData) {
		t.Fatalf("TrainModel err = %v, want ErrInsufficientData", err)
	}
	if s.ModelInfo().Trained {
		t.Error("failed training left the model trained")
	}
}

func TestTrainModelFlipsToTrained(t *testing.T) {
	s, _ := newTestService()

	// Twelve students with mixed outcomes give the trainer a varied batch.
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("s%d", i)
		for j := 0; j < 5; j++ {
			submit(t, s, id, (i+j)%3 != 0)
		}
	}

	resp, err := s.TrainModel()
	if err != nil {
		t.Fatalf("TrainModel failed: %v", err)
	}
	if resp.Report.Samples != 12 {
		t.Errorf("trained on %d samples, want 12", resp.Report.Samples)
	}
	if !resp.Model.Trained {
		t.Error("TrainResponse reports untrained model")
	}
	if !s.ModelInfo().Trained {
		t.Error("ModelInfo still reports untrained after TrainModel")
	}

	// Predictions now come from the forest but stay inside the range.
	next, err := s.NextDifficulty("s0")
	if err != nil {
		t.Fatalf("NextDifficulty failed: %v", err)
	}
	if !next.ModelTrained {
		t.Error("NextDifficultyResponse.ModelTrained = false after training")
	}
	if next.PredictedDifficulty < models.MinDifficulty || next.PredictedDifficulty > models.MaxDifficulty {
		t.Errorf("PredictedDifficulty = %f, out of range", next.PredictedDifficulty)
	}
}

func TestBuildTrainingSetSkipsEmptyStudents(t *testing.T) {
	repo := performance.NewMemoryRepository()
	s := NewService(performance.NewTracker(repo), adaptive.NewPredictor(), nil)

	submit(t, s, "active", true)

	// A student row with no recorded attempts contributes nothing trainable.
	if err := repo.PutStudent(&models.Student{ID: "idle", CurrentDifficulty: 1.0}); err != nil {
		t.Fatalf("PutStudent failed: %v", err)
	}

	samples, err := s.BuildTrainingSet()
	if err != nil {
		t.Fatalf("BuildTrainingSet failed: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("training set has %d samples, want 1", len(samples))
	}
	if samples[0].Snapshot.StudentID != "active" {
		t.Errorf("sample student = %s, want active", samples[0].Snapshot.StudentID)
	}
}
