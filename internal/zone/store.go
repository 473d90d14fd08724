package zone

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"
)

// MinPoints is the smallest polygon accepted as a zone.
const MinPoints = 3

// Store holds the ordered list of restricted zones and persists it as JSON.
// Zone identity is the index in the list.
type Store struct {
	path     string
	zones    []geometry.Polygon
	revision uint64
	mu       sync.RWMutex
	logger   *logger.Logger
}

// NewStore creates an empty store bound to the given zones file.
func NewStore(path string, logger *logger.Logger) *Store {
	return &Store{
		path:   path,
		zones:  make([]geometry.Polygon, 0),
		logger: logger,
	}
}

// Path returns the zones file location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the zones with the contents of the zones file.
// A missing file leaves the store empty and returns found=false with no error.
// A malformed file returns a *ParseError and leaves the store untouched.
func (s *Store) Load() (found bool, err error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.zones = make([]geometry.Polygon, 0)
		s.revision++
		s.mu.Unlock()
		s.logger.Warning("Zones file %s not found, starting with no zones", s.path)
		return false, nil
	}
	if err != nil {
		return false, &IOError{Path: s.path, Op: "read", Err: err}
	}

	zones, err := decodeZones(data)
	if err != nil {
		return true, &ParseError{Path: s.path, Err: err}
	}

	s.mu.Lock()
	s.zones = zones
	s.revision++
	s.mu.Unlock()

	s.logger.Info("Loaded %d zones from %s", len(zones), s.path)
	return true, nil
}

func decodeZones(data []byte) ([]geometry.Polygon, error) {
	var zones []geometry.Polygon
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, err
	}
	// An empty file is written as [], never null.
	if zones == nil {
		return nil, fmt.Errorf("zones file must hold a JSON array")
	}
	for i, poly := range zones {
		if len(poly) < MinPoints {
			return nil, fmt.Errorf("zone %d: %w", i, ErrInvalidZone)
		}
	}
	return zones, nil
}

// Save writes the zones to the zones file, preserving zone and point order.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.zones, "", "  ")
	count := len(s.zones)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode zones: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return &IOError{Path: s.path, Op: "write", Err: err}
	}

	s.logger.Info("Saved %d zones to %s", count, s.path)
	return nil
}

// Add appends a zone. Polygons with fewer than 3 points are rejected.
func (s *Store) Add(poly geometry.Polygon) error {
	if len(poly) < MinPoints {
		s.logger.Warning("Rejected zone with %d points: need at least %d", len(poly), MinPoints)
		return ErrInvalidZone
	}

	s.mu.Lock()
	s.zones = append(s.zones, poly.Clone())
	s.revision++
	total := len(s.zones)
	s.mu.Unlock()

	s.logger.Info("Added zone with %d points. Total zones: %d", len(poly), total)
	return nil
}

// Remove deletes the zone at index. Later zones shift down by one.
func (s *Store) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.zones) {
		return ErrZoneNotFound
	}
	s.zones = append(s.zones[:index], s.zones[index+1:]...)
	s.revision++

	s.logger.Info("Removed zone %d. Total zones: %d", index+1, len(s.zones))
	return nil
}

// Reset clears all zones.
func (s *Store) Reset() {
	s.mu.Lock()
	s.zones = make([]geometry.Polygon, 0)
	s.revision++
	s.mu.Unlock()

	s.logger.Info("All zones cleared")
}

// Zones returns a copy of the current zones in order.
func (s *Store) Zones() []geometry.Polygon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]geometry.Polygon, len(s.zones))
	for i, poly := range s.zones {
		out[i] = poly.Clone()
	}
	return out
}

// Len returns the number of committed zones.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}

// Revision changes on every structural change (add, remove, reset, load).
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}
