package sqlite

import (
	"fmt"

	"zoneguard/internal/model"

	"github.com/google/uuid"
)

// AlarmRepository implements repository.AlarmRepository for SQLite.
type AlarmRepository struct {
	db *DB
}

// NewAlarmRepository creates a new SQLite alarm event repository.
func NewAlarmRepository(db *DB) *AlarmRepository {
	return &AlarmRepository{db: db}
}

// Insert stores an alarm transition. An empty ID is filled with a new UUID.
func (r *AlarmRepository) Insert(ev *model.AlarmEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO alarm_events (id, zone, alarm_on, timestamp)
		VALUES (?, ?, ?, ?)
	`, ev.ID, ev.Zone, ev.AlarmOn, ev.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert alarm event: %w", err)
	}
	return nil
}

// GetRecent returns the latest alarm events across all zones, newest first.
func (r *AlarmRepository) GetRecent(limit int) ([]model.AlarmEvent, error) {
	return r.query(`SELECT id, zone, alarm_on, timestamp FROM alarm_events
		ORDER BY timestamp DESC LIMIT ?`, limit)
}

// GetByZone returns the latest alarm events of one zone, newest first.
func (r *AlarmRepository) GetByZone(zone int, limit int) ([]model.AlarmEvent, error) {
	return r.query(`SELECT id, zone, alarm_on, timestamp FROM alarm_events
		WHERE zone = ? ORDER BY timestamp DESC LIMIT ?`, zone, limit)
}

func (r *AlarmRepository) query(query string, args ...interface{}) ([]model.AlarmEvent, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarm events: %w", err)
	}
	defer rows.Close()

	var events []model.AlarmEvent
	for rows.Next() {
		var ev model.AlarmEvent
		if err := rows.Scan(&ev.ID, &ev.Zone, &ev.AlarmOn, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan alarm event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
