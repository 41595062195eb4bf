package performance

import (
	"sort"
	"sync"

	"github.com/geoquiz/backend/internal/models"
)

// MemoryRepository is an in-memory Repository. It backs the test suites
// and any embedder that wants process-lifetime state without a database.
type MemoryRepository struct {
	mu       sync.Mutex
	students map[string]models.Student
	attempts map[string][]models.AttemptRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		students: make(map[string]models.Student),
		attempts: make(map[string][]models.AttemptRecord),
	}
}

func (r *MemoryRepository) GetStudent(id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.students[id]
	if !ok {
		return nil, ErrStudentNotFound
	}
	out := s
	out.TopicsVisited = append([]string(nil), s.TopicsVisited...)
	return &out, nil
}

func (r *MemoryRepository) PutStudent(s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	stored.TopicsVisited = append([]string(nil), s.TopicsVisited...)
	r.students[s.ID] = stored
	return nil
}

func (r *MemoryRepository) AppendAttempt(rec models.AttemptRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := append(r.attempts[rec.StudentID], rec)
	if len(log) > HistoryLimit {
		log = log[len(log)-HistoryLimit:]
	}
	r.attempts[rec.StudentID] = log
	return nil
}

func (r *MemoryRepository) Attempts(studentID string) ([]models.AttemptRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]models.AttemptRecord(nil), r.attempts[studentID]...), nil
}

func (r *MemoryRepository) ListStudents() ([]models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Student, 0, len(r.students))
	for _, s := range r.students {
		s.TopicsVisited = append([]string(nil), s.TopicsVisited...)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
