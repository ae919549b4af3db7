package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Episode is one contiguous span of touched detections.
type Episode struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	PeakConfidence float64    `json:"peak_confidence"`
	Ticks          int        `json:"ticks"`
	Sounds         int        `json:"sounds"`
}

// Open reports whether the episode has not ended yet.
func (e *Episode) Open() bool {
	return e.EndedAt == nil
}

// Duration returns how long the episode lasted, or has lasted so far.
func (e *Episode) Duration() time.Duration {
	if e.EndedAt == nil {
		return time.Since(e.StartedAt)
	}
	return e.EndedAt.Sub(e.StartedAt)
}

// EpisodeRepository provides CRUD operations for episodes.
type EpisodeRepository struct {
	db *sql.DB
}

// Episodes returns the episode repository for this store.
func (s *Store) Episodes() *EpisodeRepository {
	return &EpisodeRepository{db: s.db}
}

// Create inserts e, assigning an ID and start time when they are empty.
func (r *EpisodeRepository) Create(e *Episode) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO episodes (id, started_at, ended_at, peak_confidence, ticks, sounds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.StartedAt, nullTime(e.EndedAt), e.PeakConfidence, e.Ticks, e.Sounds,
	)
	return err
}

// Update writes the mutable fields of e.
func (r *EpisodeRepository) Update(e *Episode) error {
	result, err := r.db.Exec(
		`UPDATE episodes SET ended_at = ?, peak_confidence = ?, ticks = ?, sounds = ?
		 WHERE id = ?`,
		nullTime(e.EndedAt), e.PeakConfidence, e.Ticks, e.Sounds, e.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// GetByID retrieves an episode by its ID.
func (r *EpisodeRepository) GetByID(id string) (*Episode, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, ended_at, peak_confidence, ticks, sounds
		 FROM episodes WHERE id = ?`,
		id,
	)

	e, err := scanEpisode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns the most recent episodes first. limit <= 0 returns all.
func (r *EpisodeRepository) List(limit int) ([]*Episode, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, peak_confidence, ticks, sounds
		 FROM episodes ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return episodes, nil
}

// CloseOpen ends every episode still open at the given time. It returns the
// number of episodes closed. Used at startup to tidy up after a crash.
func (r *EpisodeRepository) CloseOpen(at time.Time) (int, error) {
	result, err := r.db.Exec(`UPDATE episodes SET ended_at = ? WHERE ended_at IS NULL`, at)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// Delete removes an episode by its ID.
func (r *EpisodeRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM episodes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(s scanner) (*Episode, error) {
	e := &Episode{}
	var ended sql.NullTime

	if err := s.Scan(&e.ID, &e.StartedAt, &ended, &e.PeakConfidence, &e.Ticks, &e.Sounds); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		e.EndedAt = &t
	}
	return e, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
