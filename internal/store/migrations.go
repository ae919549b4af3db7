package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Episodes - one row per contiguous span of touched detections
		`CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			peak_confidence REAL NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			sounds INTEGER NOT NULL DEFAULT 0
		)`,

		// Training runs - one row per sampling phase
		`CREATE TABLE IF NOT EXISTS training_runs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL CHECK(label IN ('not_touch', 'touched')),
			requested INTEGER NOT NULL,
			collected INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_episodes_started_at ON episodes(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_training_runs_started_at ON training_runs(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
