package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
	"zoneguard/internal/dto"
	"zoneguard/internal/model"
	"zoneguard/internal/repository/sqlite"
)

var t0 = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

// day0 is local noon so that date filters select whole local days.
var day0 = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func seedCaptures(t *testing.T, env *testEnv) *sqlite.CaptureRepository {
	t.Helper()

	repo := sqlite.NewCaptureRepository(env.db)
	if err := os.MkdirAll(env.cfg.ScreenshotDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		ts := day0.AddDate(0, 0, i)
		name := fmt.Sprintf("alarm_%d_zone%d.jpg", ts.UnixMilli(), i%2+1)
		path := filepath.Join(env.cfg.ScreenshotDir, name)
		if err := os.WriteFile(path, []byte("jpeg"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := repo.Insert(&model.Capture{
			Filename: name, Zone: i % 2, Source: "frame", Timestamp: ts, FilePath: path, FileSize: 4,
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	return repo
}

func decodeCaptures(t *testing.T, body []byte) dto.CapturesData {
	t.Helper()
	var data struct {
		Captures []struct {
			Name string `json:"name"`
			Zone int    `json:"zone"`
			Date string `json:"date"`
		} `json:"captures"`
		Length     int `json:"length"`
		TotalPages int `json:"totalPages"`
		Size       int `json:"size"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		t.Fatalf("Failed to decode captures: %v", err)
	}
	out := dto.CapturesData{Length: data.Length, TotalPages: data.TotalPages, Size: int64(data.Size)}
	for _, c := range data.Captures {
		out.Captures = append(out.Captures, dto.CaptureInfo{Name: c.Name, Zone: c.Zone})
	}
	return out
}

func TestGetCapturesHandler(t *testing.T) {
	env := setupTestEnv(t)
	repo := seedCaptures(t, env)
	h := GetCapturesHandler(env.logger, repo)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantLen   int
		wantPages int
	}{
		{"all", "", 5, 5, 1},
		{"paged", "?limit=2&page=3", 1, 5, 3},
		{"zone 1", "?zone=1", 3, 3, 1},
		{"zone 2", "?zone=2", 2, 2, 1},
		{"date range", "?dateAfter=2025-06-16&dateBefore=2025-06-17", 2, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/captures"+tt.query, "")
			expectStatus(t, rr, http.StatusOK)

			data := decodeCaptures(t, rr.Body.Bytes())
			if len(data.Captures) != tt.wantCount {
				t.Errorf("expected %d captures, got %d", tt.wantCount, len(data.Captures))
			}
			if data.Length != tt.wantLen || data.TotalPages != tt.wantPages {
				t.Errorf("expected length %d pages %d, got %d %d", tt.wantLen, tt.wantPages, data.Length, data.TotalPages)
			}
			if data.Size != 20 {
				t.Errorf("expected total size 20, got %d", data.Size)
			}
		})
	}
}

func TestGetCapturesHandler_ZonesAreOneBased(t *testing.T) {
	env := setupTestEnv(t)
	repo := seedCaptures(t, env)

	rr := do(t, GetCapturesHandler(env.logger, repo), http.MethodGet, "/api/captures?zone=2", "")
	for _, c := range decodeCaptures(t, rr.Body.Bytes()).Captures {
		if c.Zone != 2 {
			t.Errorf("expected zone 2, got %d for %s", c.Zone, c.Name)
		}
	}
}

func TestViewCaptureHandler(t *testing.T) {
	env := setupTestEnv(t)
	repo := seedCaptures(t, env)
	captures, _ := repo.GetAll(nil)

	rr := do(t, ViewCaptureHandler(env.cfg), http.MethodGet, "/api/captures/view?name="+captures[0].Filename, "")
	expectStatus(t, rr, http.StatusOK)
	if rr.Body.String() != "jpeg" {
		t.Errorf("unexpected body %q", rr.Body.String())
	}

	rr = do(t, ViewCaptureHandler(env.cfg), http.MethodGet, "/api/captures/view?name=../zones.json", "")
	expectStatus(t, rr, http.StatusBadRequest)
}

func TestDeleteAndClearCaptures(t *testing.T) {
	env := setupTestEnv(t)
	repo := seedCaptures(t, env)
	captures, _ := repo.GetAll(nil)
	name := captures[0].Filename

	rr := do(t, DeleteCaptureHandler(env.cfg, env.logger, repo), http.MethodPost, "/api/captures/delete?name="+name, "")
	expectStatus(t, rr, http.StatusOK)

	if _, err := os.Stat(filepath.Join(env.cfg.ScreenshotDir, name)); !os.IsNotExist(err) {
		t.Error("file should be removed")
	}
	if c, _ := repo.GetByFilename(name); c != nil {
		t.Error("record should be removed")
	}

	rr = do(t, ClearCapturesHandler(env.cfg, env.logger, repo), http.MethodPost, "/api/captures/clear", "")
	expectStatus(t, rr, http.StatusNoContent)

	files, _ := os.ReadDir(env.cfg.ScreenshotDir)
	if len(files) != 0 {
		t.Errorf("expected empty capture directory, got %d files", len(files))
	}
	if count, _ := repo.GetTotalCount(nil); count != 0 {
		t.Errorf("expected no records, got %d", count)
	}
}
