package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"
	"zoneguard/internal/capture"
	"zoneguard/internal/config"
	"zoneguard/internal/dto"
	"zoneguard/internal/logger"
	"zoneguard/internal/model"
	"zoneguard/internal/repository"
)

const (
	// CaptureBufferLimit limits how many captures per zone are buffered before flushing.
	CaptureBufferLimit = 10
	// DefaultFlushInterval is used when the configured interval is not positive.
	DefaultFlushInterval = 2 * time.Second
)

// BufferService buffers evidence captures in memory and periodically flushes them to disk.
type BufferService struct {
	capturesDir   string
	flushInterval time.Duration
	captures      []dto.BufferedCapture
	bufferCount   map[int]int
	mu            sync.Mutex
	logger        *logger.Logger
	captureRepo   repository.CaptureRepository
}

// NewBufferService creates a new BufferService writing into cfg.ScreenshotDir.
func NewBufferService(cfg *config.Config, logger *logger.Logger, captureRepo repository.CaptureRepository) *BufferService {
	interval := time.Duration(cfg.FlushInterval) * time.Second
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &BufferService{
		capturesDir:   cfg.ScreenshotDir,
		flushInterval: interval,
		captures:      make([]dto.BufferedCapture, 0),
		bufferCount:   make(map[int]int),
		logger:        logger,
		captureRepo:   captureRepo,
	}
}

// Dir returns the directory evidence files are written to.
func (s *BufferService) Dir() string {
	return s.capturesDir
}

// Run flushes buffered captures on every tick until ctx is cancelled.
// Whatever is still buffered on shutdown is flushed before returning.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushCaptures()
			return
		case <-ticker.C:
			s.FlushCaptures()
		}
	}
}

// AddCapture appends an artifact to the in-memory buffer. It reports false
// when the zone's buffer is full and the artifact was dropped.
func (s *BufferService) AddCapture(zone int, at time.Time, source string, art capture.Artifact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferCount[zone] >= CaptureBufferLimit {
		s.logger.Warning("Capture buffer for zone %d is full, dropping capture", zone+1)
		return false
	}

	s.captures = append(s.captures, dto.BufferedCapture{
		Timestamp: at,
		Zone:      zone,
		Source:    source,
		Format:    art.Format,
		Data:      art.Data,
	})
	s.bufferCount[zone]++
	return true
}

// Pending returns the number of buffered captures.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.captures)
}

// CaptureFilename returns the evidence file name for a capture. Zones are
// numbered from 1 in file names, matching the labels drawn on the frame.
func CaptureFilename(zone int, at time.Time, format string) string {
	return fmt.Sprintf("alarm_%d_zone%d.%s", at.UnixMilli(), zone+1, format)
}

// FlushCaptures writes buffered captures to disk, records them in the
// database and resets the buffer and per-zone counters.
func (s *BufferService) FlushCaptures() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.captures) == 0 {
		return
	}

	if err := os.MkdirAll(s.capturesDir, 0755); err != nil {
		s.logger.Error("Error creating directory: %v", err)
		return
	}

	savedCount := 0
	for _, c := range s.captures {
		filename := CaptureFilename(c.Zone, c.Timestamp, c.Format)
		fullpath := filepath.Join(s.capturesDir, filename)

		if err := os.WriteFile(fullpath, c.Data, 0644); err != nil {
			s.logger.Error("Error saving capture %s: %v", filename, err)
			continue
		}

		if s.captureRepo != nil {
			record := &model.Capture{
				Filename:  filename,
				Zone:      c.Zone,
				Source:    c.Source,
				Timestamp: c.Timestamp,
				FilePath:  fullpath,
				FileSize:  int64(len(c.Data)),
			}
			if _, err := s.captureRepo.Insert(record); err != nil {
				s.logger.Error("Error saving capture to database %s: %v", filename, err)
			}
		}

		s.logger.Info("Saved evidence %s", filename)
		savedCount++
	}

	s.logger.Info("Flushed %d captures to disk", savedCount)
	s.captures = s.captures[:0]
	s.bufferCount = make(map[int]int)
}

// UnknownZone marks captures whose zone cannot be told from the file name.
const UnknownZone = -1

var (
	captureNamePattern = regexp.MustCompile(`^alarm_(\d+)_zone(\d+)\.(\w+)$`)
	// Older captures carry only a unix time in seconds.
	legacyNamePattern = regexp.MustCompile(`^alarm_(\d+)\.(\w+)$`)
)

// ParseCaptureFilename recovers zone, time and format from an evidence file
// name produced by CaptureFilename or by older versions.
func ParseCaptureFilename(name string) (zone int, at time.Time, format string, err error) {
	if m := captureNamePattern.FindStringSubmatch(name); m != nil {
		millis, _ := strconv.ParseInt(m[1], 10, 64)
		n, _ := strconv.Atoi(m[2])
		if n < 1 {
			return 0, time.Time{}, "", fmt.Errorf("invalid zone number in %s", name)
		}
		return n - 1, time.UnixMilli(millis), m[3], nil
	}
	if m := legacyNamePattern.FindStringSubmatch(name); m != nil {
		secs, _ := strconv.ParseInt(m[1], 10, 64)
		return UnknownZone, time.Unix(secs, 0), m[2], nil
	}
	return 0, time.Time{}, "", fmt.Errorf("not a capture file name: %s", name)
}
