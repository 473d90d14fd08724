package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"zoneguard/internal/dto"
	"zoneguard/internal/model"
)

// CaptureRepository implements repository.CaptureRepository for SQLite.
type CaptureRepository struct {
	db *DB
}

// NewCaptureRepository creates a new SQLite capture repository.
func NewCaptureRepository(db *DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

const captureColumns = `id, filename, zone, source, timestamp, filepath, filesize`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCapture(row rowScanner) (*model.Capture, error) {
	var c model.Capture
	if err := row.Scan(&c.ID, &c.Filename, &c.Zone, &c.Source, &c.Timestamp, &c.FilePath, &c.FileSize); err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert adds a new capture record to the database.
func (r *CaptureRepository) Insert(c *model.Capture) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO captures (filename, zone, source, timestamp, filepath, filesize)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Filename, c.Zone, c.Source, c.Timestamp.UTC(), c.FilePath, c.FileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture: %w", err)
	}

	return result.LastInsertId()
}

// GetByID retrieves a capture by its ID. It returns nil, nil when absent.
func (r *CaptureRepository) GetByID(id int64) (*model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	c, err := scanCapture(r.db.Conn().QueryRow(`SELECT `+captureColumns+` FROM captures WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return c, nil
}

// GetByFilename retrieves a capture by its filename. It returns nil, nil when absent.
func (r *CaptureRepository) GetByFilename(filename string) (*model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	c, err := scanCapture(r.db.Conn().QueryRow(`SELECT `+captureColumns+` FROM captures WHERE filename = ?`, filename))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return c, nil
}

// whereClause builds the shared filter conditions of GetAll and GetTotalCount.
// Timestamps are stored in UTC so that they compare correctly as text.
func whereClause(filter *dto.CaptureFilters) (string, []interface{}) {
	query := " WHERE 1=1"
	args := []interface{}{}

	if filter == nil {
		return query, args
	}

	if filter.Zone != dto.AllZones {
		query += " AND zone = ?"
		args = append(args, filter.Zone)
	}

	if !filter.DateAfter.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.DateAfter.UTC())
	}

	if !filter.DateBefore.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.DateBefore.UTC())
	}

	return query, args
}

// GetAll retrieves captures matching the filter, newest first.
func (r *CaptureRepository) GetAll(filter *dto.CaptureFilters) ([]model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT ` + captureColumns + ` FROM captures` + where + ` ORDER BY timestamp DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var captures []model.Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		captures = append(captures, *c)
	}

	return captures, rows.Err()
}

// GetTotalCount returns the number of captures matching the filter.
func (r *CaptureRepository) GetTotalCount(filter *dto.CaptureFilters) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM captures`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count captures: %w", err)
	}

	return count, nil
}

// GetStats returns statistics about stored captures.
func (r *CaptureRepository) GetStats() (*model.CaptureStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &model.CaptureStats{
		PerZone: make(map[int]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*), COALESCE(SUM(filesize), 0) FROM captures`).
		Scan(&stats.TotalCaptures, &stats.TotalSizeBytes); err != nil {
		return nil, fmt.Errorf("failed to get capture totals: %w", err)
	}

	rows, err := r.db.Conn().Query(`SELECT zone, COUNT(*) FROM captures GROUP BY zone`)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures per zone: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var zone, count int
		if err := rows.Scan(&zone, &count); err != nil {
			return nil, fmt.Errorf("failed to scan zone count: %w", err)
		}
		stats.PerZone[zone] = count
	}

	return stats, rows.Err()
}

// DeleteByFilename removes a capture by its filename.
func (r *CaptureRepository) DeleteByFilename(filename string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM captures WHERE filename = ?`, filename); err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	return nil
}

// DeleteAll removes all captures.
func (r *CaptureRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM captures`); err != nil {
		return fmt.Errorf("failed to delete captures: %w", err)
	}
	return nil
}
