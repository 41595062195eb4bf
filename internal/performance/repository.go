package performance

import (
	"errors"

	"github.com/geoquiz/backend/internal/models"
)

// HistoryLimit caps each student's attempt log. Appending beyond the
// cap silently evicts the oldest entries — a bounded-memory policy, not
// an error.
const HistoryLimit = 100

// ErrStudentNotFound is returned by lookups for an unknown student id.
var ErrStudentNotFound = errors.New("performance: student not found")

// Repository is the storage contract behind the tracker. Implementations
// must make writes durable before returning; they are not required to
// serialize concurrent mutators for the same student — that is the
// caller's job.
type Repository interface {
	// GetStudent returns ErrStudentNotFound for an unknown id.
	GetStudent(id string) (*models.Student, error)

	// PutStudent inserts or replaces the student's aggregate row.
	PutStudent(s *models.Student) error

	// AppendAttempt adds one record to the student's log and enforces
	// HistoryLimit by evicting the oldest entries.
	AppendAttempt(rec models.AttemptRecord) error

	// Attempts returns the student's log ordered oldest to newest.
	Attempts(studentID string) ([]models.AttemptRecord, error)

	// ListStudents returns every known student.
	ListStudents() ([]models.Student, error)
}
