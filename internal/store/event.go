package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/visage/internal/detector"
)

// Event represents one published detection result stored in the database.
type Event struct {
	ID         string
	FaceCount  int
	Status     string
	Faces      []detector.FaceRegion
	DetectedAt time.Time
}

// EventRepository provides CRUD operations for detection events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts a new event and its face regions in one transaction.
func (r *EventRepository) Create(e *Event) error {
	e.DetectedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO events (id, face_count, status, detected_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.FaceCount, e.Status, e.DetectedAt,
	); err != nil {
		return err
	}

	for i, f := range e.Faces {
		if _, err := tx.Exec(
			`INSERT INTO event_faces (event_id, face_index, x, y, width, height)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, i, f.Left, f.Top, f.Width, f.Height,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves an event and its face regions by ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}

	err := r.db.QueryRow(
		`SELECT id, face_count, status, detected_at FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.FaceCount, &e.Status, &e.DetectedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT x, y, width, height FROM event_faces
		 WHERE event_id = ? ORDER BY face_index`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var f detector.FaceRegion
		if err := rows.Scan(&f.Left, &f.Top, &f.Width, &f.Height); err != nil {
			return nil, err
		}
		e.Faces = append(e.Faces, f)
	}

	return e, rows.Err()
}

// List retrieves the most recent events, newest first. A limit of 0 or
// less defaults to 50.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, face_count, status, detected_at FROM events
		 ORDER BY detected_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.FaceCount, &e.Status, &e.DetectedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountSince returns the number of events recorded after the given time.
func (r *EventRepository) CountSince(t time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE detected_at > ?`, t,
	).Scan(&count)
	return count, err
}

// Delete removes an event and its face regions.
func (r *EventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Prune removes events recorded before the given time and returns how many
// were removed.
func (r *EventRepository) Prune(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE detected_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
