package performance

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geoquiz/backend/internal/models"
)

const (
	// responseTimeWeight is the weight of the newest sample in the
	// exponentially smoothed response-time average.
	responseTimeWeight = 0.3

	// recentWindow bounds the recent-accuracy calculation. Average
	// attempts deliberately stays over the full (capped) log.
	recentWindow = 10

	dateLayout = "2006-01-02"

	// neutralAccuracy is the prior reported for a student with no
	// recorded attempts — keeps the heuristic from pushing a fresh
	// student toward either extreme.
	neutralAccuracy = 0.5

	// StartingDifficulty is where every new student begins.
	StartingDifficulty = models.MinDifficulty
)

// ErrMalformedRecord rejects attempt data that would corrupt the
// aggregate statistics: negative response time or a non-positive
// attempt count.
var ErrMalformedRecord = errors.New("performance: malformed attempt record")

// Tracker is the performance aggregator: it turns the raw attempt log
// into the snapshot the predictor consumes. It assumes at most one
// concurrent mutator per student id.
type Tracker struct {
	repo Repository
}

func NewTracker(repo Repository) *Tracker {
	return &Tracker{repo: repo}
}

// RecordAttempt appends one scored attempt to the student's log,
// creating the student on first sight, and folds it into the running
// counters. A zero Timestamp means "now"; a caller-supplied one drives
// the calendar-day streak, which makes the streak testable and lets
// batch importers replay history.
func (t *Tracker) RecordAttempt(rec models.AttemptRecord) error {
	if rec.StudentID == "" || rec.QuestionID == "" {
		return fmt.Errorf("%w: missing student or question id", ErrMalformedRecord)
	}
	if rec.ResponseTime < 0 {
		return fmt.Errorf("%w: negative response time", ErrMalformedRecord)
	}
	if rec.Attempts < 1 {
		return fmt.Errorf("%w: attempt count must be positive", ErrMalformedRecord)
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	student, err := t.repo.GetStudent(rec.StudentID)
	if errors.Is(err, ErrStudentNotFound) {
		student = &models.Student{
			ID:                rec.StudentID,
			CurrentDifficulty: StartingDifficulty,
		}
	} else if err != nil {
		return err
	}

	student.TotalQuestions++
	student.TotalAttempts += rec.Attempts
	if rec.Correct {
		student.CorrectAnswers++
	}

	if student.TotalQuestions == 1 {
		student.AvgResponseTime = rec.ResponseTime
	} else {
		student.AvgResponseTime = (1-responseTimeWeight)*student.AvgResponseTime +
			responseTimeWeight*rec.ResponseTime
	}

	t.updateStreak(student, rec.Timestamp)

	if rec.Topic != nil && *rec.Topic != "" {
		student.TopicsVisited = appendTopic(student.TopicsVisited, *rec.Topic)
	}

	if err := t.repo.PutStudent(student); err != nil {
		return err
	}
	return t.repo.AppendAttempt(rec)
}

// updateStreak applies the calendar-day rule: same local day leaves the
// streak alone, exactly the next day extends it, anything else — a gap,
// or a first-ever attempt — resets it to 1. This is date equality, not a
// rolling 24h window: 23 hours apart across midnight still counts as
// consecutive days.
func (t *Tracker) updateStreak(student *models.Student, ts time.Time) {
	day := ts.Format(dateLayout)
	switch student.LastQuizDate {
	case day:
		// Already quizzed today.
	case ts.AddDate(0, 0, -1).Format(dateLayout):
		student.StreakDays++
	default:
		student.StreakDays = 1
	}
	student.LastQuizDate = day
}

// Snapshot derives the performance view for one student. Unknown ids
// fail with ErrStudentNotFound; a known student with zero attempts gets
// the neutral defaults.
func (t *Tracker) Snapshot(studentID string) (*models.PerformanceSnapshot, error) {
	student, err := t.repo.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	snap := &models.PerformanceSnapshot{
		StudentID:         student.ID,
		CurrentDifficulty: student.CurrentDifficulty,
		TotalQuestions:    student.TotalQuestions,
		TopicsVisited:     len(student.TopicsVisited),
		StreakDays:        student.StreakDays,
	}

	if student.TotalQuestions == 0 {
		snap.Accuracy = neutralAccuracy
		snap.RecentAccuracy = neutralAccuracy
		snap.AvgAttempts = 1.0
		return snap, nil
	}

	snap.Accuracy = float64(student.CorrectAnswers) / float64(student.TotalQuestions)
	snap.AvgResponseTime = student.AvgResponseTime

	history, err := t.repo.Attempts(studentID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		snap.RecentAccuracy = neutralAccuracy
		snap.AvgAttempts = 1.0
		return snap, nil
	}

	recent := history
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	correct := 0
	for _, rec := range recent {
		if rec.Correct {
			correct++
		}
	}
	snap.RecentAccuracy = float64(correct) / float64(len(recent))

	totalAttempts := 0
	for _, rec := range history {
		totalAttempts += rec.Attempts
	}
	snap.AvgAttempts = float64(totalAttempts) / float64(len(history))

	return snap, nil
}

// UpdateDifficulty persists the difficulty chosen for the student's
// next question, clamped into the valid range.
func (t *Tracker) UpdateDifficulty(studentID string, difficulty float64) error {
	student, err := t.repo.GetStudent(studentID)
	if err != nil {
		return err
	}
	student.CurrentDifficulty = models.ClampDifficulty(difficulty)
	return t.repo.PutStudent(student)
}

// RecentAttempts returns the newest n records, oldest first.
func (t *Tracker) RecentAttempts(studentID string, n int) ([]models.AttemptRecord, error) {
	if _, err := t.repo.GetStudent(studentID); err != nil {
		return nil, err
	}
	history, err := t.repo.Attempts(studentID)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	return history, nil
}

// AllSnapshots derives a snapshot for every known student — the raw
// material for training-set construction.
func (t *Tracker) AllSnapshots() ([]models.PerformanceSnapshot, error) {
	students, err := t.repo.ListStudents()
	if err != nil {
		return nil, err
	}
	out := make([]models.PerformanceSnapshot, 0, len(students))
	for _, st := range students {
		snap, err := t.Snapshot(st.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

// Progress assembles the detailed per-student view: per-topic stats and
// the difficulty trail over the last 20 attempts.
func (t *Tracker) Progress(studentID string) (*models.StudentProgress, error) {
	student, err := t.repo.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	history, err := t.repo.Attempts(studentID)
	if err != nil {
		return nil, err
	}

	accuracy := 0.0
	if student.TotalQuestions > 0 {
		accuracy = float64(student.CorrectAnswers) / float64(student.TotalQuestions)
	}

	progress := &models.StudentProgress{
		StudentID:         student.ID,
		CurrentDifficulty: student.CurrentDifficulty,
		TotalQuestions:    student.TotalQuestions,
		CorrectAnswers:    student.CorrectAnswers,
		Accuracy:          accuracy,
		AvgResponseTime:   student.AvgResponseTime,
		StreakDays:        student.StreakDays,
		LastQuizDate:      student.LastQuizDate,
		TopicsVisited:     student.TopicsVisited,
		TopicsProgress:    topicBreakdown(history),
	}
	if progress.TopicsVisited == nil {
		progress.TopicsVisited = []string{}
	}

	trail := history
	if len(trail) > 20 {
		trail = trail[len(trail)-20:]
	}
	progress.DifficultyProgression = make([]models.DifficultyPoint, 0, len(trail))
	for _, rec := range trail {
		point := models.DifficultyPoint{
			Date:       rec.Timestamp.Format(dateLayout),
			Difficulty: rec.Difficulty,
			Correct:    rec.Correct,
		}
		if rec.Topic != nil {
			point.Topic = *rec.Topic
		}
		progress.DifficultyProgression = append(progress.DifficultyProgression, point)
	}

	return progress, nil
}

// Summary reports the aggregate line for every student.
func (t *Tracker) Summary() ([]models.StudentSummary, error) {
	students, err := t.repo.ListStudents()
	if err != nil {
		return nil, err
	}
	out := make([]models.StudentSummary, 0, len(students))
	for _, st := range students {
		accuracy := neutralAccuracy
		if st.TotalQuestions > 0 {
			accuracy = float64(st.CorrectAnswers) / float64(st.TotalQuestions)
		}
		out = append(out, models.StudentSummary{
			StudentID:         st.ID,
			CurrentDifficulty: st.CurrentDifficulty,
			TotalQuestions:    st.TotalQuestions,
			Accuracy:          accuracy,
			StreakDays:        st.StreakDays,
			TopicsVisited:     len(st.TopicsVisited),
		})
	}
	return out, nil
}

func topicBreakdown(history []models.AttemptRecord) map[string]models.TopicPerformance {
	out := make(map[string]models.TopicPerformance)
	for _, rec := range history {
		if rec.Topic == nil || *rec.Topic == "" {
			continue
		}
		tp := out[*rec.Topic]
		tp.Topic = *rec.Topic
		tp.TotalQuestions++
		if rec.Correct {
			tp.CorrectAnswers++
		}
		tp.AvgResponseTime += rec.ResponseTime
		tp.AvgAttempts += float64(rec.Attempts)
		out[*rec.Topic] = tp
	}
	for topic, tp := range out {
		n := float64(tp.TotalQuestions)
		tp.Accuracy = float64(tp.CorrectAnswers) / n
		tp.AvgResponseTime /= n
		tp.AvgAttempts /= n
		out[topic] = tp
	}
	return out
}

func appendTopic(topics []string, topic string) []string {
	for _, t := range topics {
		if t == topic {
			return topics
		}
	}
	return append(topics, topic)
}
