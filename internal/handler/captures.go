package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"zoneguard/internal/config"
	"zoneguard/internal/dto"
	"zoneguard/internal/logger"
	"zoneguard/internal/repository"
)

// GetCapturesHandler returns a filtered, paginated list of evidence captures.
// Query: page, limit, zone (1-based as shown on screen), dateAfter, dateBefore.
func GetCapturesHandler(logger *logger.Logger, captureRepo repository.CaptureRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		filter := &dto.CaptureFilters{
			Zone:       dto.AllZones,
			DateAfter:  parseDate(q.Get("dateAfter")),
			DateBefore: parseDate(q.Get("dateBefore")),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}
		if zone := atoiDefault(q.Get("zone"), 0); zone > 0 {
			filter.Zone = zone - 1
		}
		if !filter.DateBefore.IsZero() {
			// Inclusive of the whole day.
			filter.DateBefore = filter.DateBefore.Add(24*time.Hour - time.Nanosecond)
		}

		captures, err := captureRepo.GetAll(filter)
		if err != nil {
			logger.Error("Error querying captures from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := captureRepo.GetTotalCount(filter)
		if err != nil {
			logger.Error("Error counting captures: %v", err)
			totalCount = len(captures)
		}

		var totalSize int64
		if stats, err := captureRepo.GetStats(); err != nil {
			logger.Error("Error getting capture stats: %v", err)
		} else {
			totalSize = stats.TotalSizeBytes
		}

		infos := make([]dto.CaptureInfo, 0, len(captures))
		for _, c := range captures {
			infos = append(infos, dto.CaptureInfo{
				Name:      c.Filename,
				Zone:      c.Zone + 1,
				Source:    c.Source,
				Date:      c.Timestamp.Local(),
				TimeOfDay: c.Timestamp.Local(),
				Size:      c.FileSize,
			})
		}

		writeJSON(w, http.StatusOK, dto.CapturesData{
			Captures:    infos,
			Size:        totalSize,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}, logger)
	}
}

// ViewCaptureHandler serves a single evidence file named by the "name" query parameter.
func ViewCaptureHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" || filepath.Base(name) != name {
			http.Error(w, "Name parameter is required", http.StatusBadRequest)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.ScreenshotDir, name))
	}
}

// DeleteCaptureHandler removes a capture from disk and database.
func DeleteCaptureHandler(cfg *config.Config, logger *logger.Logger, captureRepo repository.CaptureRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost, http.MethodDelete) {
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" || filepath.Base(name) != name {
			http.Error(w, "Name parameter is required", http.StatusBadRequest)
			return
		}

		filePath := filepath.Join(cfg.ScreenshotDir, name)
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			logger.Error("Failed to delete file %s: %v", filePath, err)
		}

		if err := captureRepo.DeleteByFilename(name); err != nil {
			logger.Error("Failed to delete from database: %v", err)
			http.Error(w, "Failed to delete capture", http.StatusInternalServerError)
			return
		}

		logger.Info("Deleted capture: %s", name)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name}, logger)
	}
}

// ClearCapturesHandler deletes all files from the capture directory and clears the database.
func ClearCapturesHandler(cfg *config.Config, logger *logger.Logger, captureRepo repository.CaptureRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		files, err := os.ReadDir(cfg.ScreenshotDir)
		if err != nil && !os.IsNotExist(err) {
			logger.Error("Error reading capture directory: %v", err)
			http.Error(w, "Unable to read capture directory", http.StatusInternalServerError)
			return
		}

		for _, file := range files {
			if !file.IsDir() {
				if err := os.Remove(filepath.Join(cfg.ScreenshotDir, file.Name())); err != nil {
					logger.Error("Error deleting file %s: %v", file.Name(), err)
				}
			}
		}

		if err := captureRepo.DeleteAll(); err != nil {
			logger.Error("Error clearing database: %v", err)
		}

		logger.Info("All captures cleared from directory: %s", cfg.ScreenshotDir)
		w.WriteHeader(http.StatusNoContent)
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate parses a local date string in the format "2006-01-02" from the request (HTML input format).
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
