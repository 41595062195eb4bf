package quiz

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/geoquiz/backend/internal/adaptive"
	"github.com/geoquiz/backend/internal/models"
	"github.com/geoquiz/backend/internal/performance"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var req models.RecordAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.StudentID == "" || req.QuestionID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "student_id and question_id are required"})
		return
	}
	if req.Attempts <= 0 {
		req.Attempts = 1
	}

	resp, err := h.service.SubmitAttempt(req)
	if err != nil {
		if errors.Is(err, performance.ErrMalformedRecord) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		log.Printf("[quiz] submit attempt failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record attempt"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]

	snap, err := h.service.Snapshot(studentID)
	if err != nil {
		if errors.Is(err, performance.ErrStudentNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Student not found"})
			return
		}
		log.Printf("[quiz] snapshot failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load snapshot"})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) GetNextDifficulty(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]

	resp, err := h.service.NextDifficulty(studentID)
	if err != nil {
		if errors.Is(err, performance.ErrStudentNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Student not found"})
			return
		}
		log.Printf("[quiz] next difficulty failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to predict difficulty"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]

	progress, err := h.service.Progress(studentID)
	if err != nil {
		if errors.Is(err, performance.ErrStudentNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Student not found"})
			return
		}
		log.Printf("[quiz] progress failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load progress"})
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) GetAttempts(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["id"]
	limit := intQueryParam(r.URL.Query(), "limit", 20)

	attempts, err := h.service.RecentAttempts(studentID, limit)
	if err != nil {
		if errors.Is(err, performance.ErrStudentNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Student not found"})
			return
		}
		log.Printf("[quiz] attempts failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load attempts"})
		return
	}

	if attempts == nil {
		attempts = []models.AttemptRecord{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		log.Printf("[quiz] summary failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load summary"})
		return
	}
	if summary == nil {
		summary = []models.StudentSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.TrainModel()
	if err != nil {
		if errors.Is(err, adaptive.ErrInsufficientData) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error: "Insufficient training data: need at least 10 students with recorded attempts",
			})
			return
		}
		log.Printf("[quiz] train failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Training failed"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ModelInfo())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"model":  h.service.ModelInfo(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	if v := query.Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}
