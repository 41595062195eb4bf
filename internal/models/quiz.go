package models

// ── API Request/Response Types ────────────────────────────

// RecordAttemptRequest carries an already-scored answer. Validating and
// scoring the answer itself is the caller's job; this layer only records
// the outcome and adapts difficulty.
type RecordAttemptRequest struct {
	StudentID    string  `json:"student_id"`
	QuestionID   string  `json:"question_id"`
	Difficulty   float64 `json:"difficulty"`
	ResponseTime float64 `json:"response_time_seconds"`
	Correct      bool    `json:"correct"`
	Attempts     int     `json:"attempts"`
	Topic        *string `json:"topic,omitempty"`
}

type RecordAttemptResponse struct {
	Correct        bool                `json:"correct"`
	NextDifficulty float64             `json:"next_difficulty"`
	Performance    PerformanceSnapshot `json:"performance"`
}

type NextDifficultyResponse struct {
	StudentID           string  `json:"student_id"`
	PredictedDifficulty float64 `json:"predicted_difficulty"`
	ModelTrained        bool    `json:"model_trained"`
}

type ModelInfo struct {
	Trained        bool   `json:"trained"`
	ModelType      string `json:"model_type"`
	EstimatorCount int    `json:"estimator_count"`
	FeatureCount   int    `json:"feature_count"`
}

type TrainReport struct {
	Samples    int     `json:"training_samples"`
	TrainScore float64 `json:"train_r2"`
	TestScore  float64 `json:"test_r2"`
}

type TrainResponse struct {
	Message string      `json:"message"`
	Report  TrainReport `json:"report"`
	Model   ModelInfo   `json:"model_info"`
}
