package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Events table - one row per published detection result
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			face_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			detected_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Event faces table - bounding boxes for each event
		`CREATE TABLE IF NOT EXISTS event_faces (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			face_index INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_event_faces_event_id ON event_faces(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_detected_at ON events(detected_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
