package repository

import (
	"zoneguard/internal/dto"
	"zoneguard/internal/model"
)

// CaptureRepository defines the interface for capture data operations.
type CaptureRepository interface {
	// Create operations
	Insert(c *model.Capture) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Capture, error)
	GetByFilename(filename string) (*model.Capture, error)
	GetAll(filter *dto.CaptureFilters) ([]model.Capture, error)
	GetTotalCount(filter *dto.CaptureFilters) (int, error)
	GetStats() (*model.CaptureStats, error)

	// Delete operations
	DeleteByFilename(filename string) error
	DeleteAll() error
}

// AlarmRepository defines the interface for alarm event operations.
type AlarmRepository interface {
	Insert(ev *model.AlarmEvent) error
	GetRecent(limit int) ([]model.AlarmEvent, error)
	GetByZone(zone int, limit int) ([]model.AlarmEvent, error)
}
