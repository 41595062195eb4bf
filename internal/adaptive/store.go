package adaptive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ModelStore persists fitted model snapshots as JSONB rows. The newest
// row wins on reload; older rows are kept for rollback by hand.
type ModelStore struct {
	db *sql.DB
}

func NewModelStore(db *sql.DB) *ModelStore {
	return &ModelStore{db: db}
}

func (s *ModelStore) Save(ms *ModelSnapshot) error {
	payload, err := json.Marshal(ms)
	if err != nil {
		return fmt.Errorf("marshal model snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO model_snapshots (schema_version, feature_count, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		ms.SchemaVersion, ms.FeatureCount, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save model snapshot: %w", err)
	}
	return nil
}

// LoadLatest returns the most recent snapshot, or (nil, nil) when none
// has been saved yet.
func (s *ModelStore) LoadLatest() (*ModelSnapshot, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM model_snapshots ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load model snapshot: %w", err)
	}

	var ms ModelSnapshot
	if err := json.Unmarshal(payload, &ms); err != nil {
		return nil, fmt.Errorf("unmarshal model snapshot: %w", err)
	}
	return &ms, nil
}
