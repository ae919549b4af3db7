package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TrainingRun records one sampling phase.
type TrainingRun struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Requested  int       `json:"requested"`
	Collected  int       `json:"collected"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// Succeeded reports whether every requested sample was collected.
func (t *TrainingRun) Succeeded() bool {
	return t.Error == "" && t.Collected == t.Requested
}

// TrainingRunRepository provides operations for training runs.
type TrainingRunRepository struct {
	db *sql.DB
}

// TrainingRuns returns the training run repository for this store.
func (s *Store) TrainingRuns() *TrainingRunRepository {
	return &TrainingRunRepository{db: s.db}
}

// Create inserts t, assigning an ID when it is empty.
func (r *TrainingRunRepository) Create(t *TrainingRun) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.Exec(
		`INSERT INTO training_runs (id, label, requested, collected, started_at, finished_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Label, t.Requested, t.Collected, t.StartedAt, t.FinishedAt, t.Error,
	)
	return err
}

// List returns the most recent training runs first. limit <= 0 returns all.
func (r *TrainingRunRepository) List(limit int) ([]*TrainingRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, label, requested, collected, started_at, finished_at, error
		 FROM training_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*TrainingRun
	for rows.Next() {
		t := &TrainingRun{}
		if err := rows.Scan(&t.ID, &t.Label, &t.Requested, &t.Collected, &t.StartedAt, &t.FinishedAt, &t.Error); err != nil {
			return nil, err
		}
		runs = append(runs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
