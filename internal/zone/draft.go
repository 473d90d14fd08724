package zone

import (
	"sync"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"
)

// Draft is the in-progress polygon being drawn by the operator.
// It is never part of the Store until Finish succeeds.
type Draft struct {
	active bool
	points geometry.Polygon
	mu     sync.Mutex
	logger *logger.Logger
}

// NewDraft creates an inactive draft.
func NewDraft(logger *logger.Logger) *Draft {
	return &Draft{logger: logger}
}

// Start enters drawing mode with an empty point buffer.
func (d *Draft) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active = true
	d.points = nil
	d.logger.Info("Entered drawing mode")
}

// AddPoint appends a vertex. It is ignored outside drawing mode.
func (d *Draft) AddPoint(p geometry.Point) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return false
	}
	d.points = append(d.points, p)
	d.logger.Info("Added point: (%d, %d)", p.X, p.Y)
	return true
}

// RemoveLastPoint drops the most recent vertex.
func (d *Draft) RemoveLastPoint() (geometry.Point, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active || len(d.points) == 0 {
		return geometry.Point{}, false
	}
	last := d.points[len(d.points)-1]
	d.points = d.points[:len(d.points)-1]
	d.logger.Info("Removed last point: (%d, %d)", last.X, last.Y)
	return last, true
}

// Finish commits the drafted polygon to store and clears the buffer so the
// next zone can be drawn. With fewer than 3 points it returns ErrInvalidZone
// and keeps the points.
func (d *Draft) Finish(store *Store) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.points) < MinPoints {
		d.logger.Warning("Need at least %d points to finish a zone, have %d", MinPoints, len(d.points))
		return ErrInvalidZone
	}
	if err := store.Add(d.points); err != nil {
		return err
	}
	d.points = nil
	return nil
}

// Cancel leaves drawing mode and discards any points.
func (d *Draft) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.active = false
	d.points = nil
	d.logger.Info("Cancelled drawing mode")
}

// Active reports whether drawing mode is on.
func (d *Draft) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Points returns a copy of the drafted vertices, never nil.
func (d *Draft) Points() geometry.Polygon {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.points == nil {
		return geometry.Polygon{}
	}
	return d.points.Clone()
}
