package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"zoneguard/internal/config"
	"zoneguard/internal/dto"
	"zoneguard/internal/logger"
	"zoneguard/internal/repository/sqlite"
	"zoneguard/internal/zone"
)

type testEnv struct {
	cfg    *config.Config
	logger *logger.Logger
	store  *zone.Store
	draft  *zone.Draft
	stream *fakeStream
	db     *sqlite.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		Password:      "secret",
		ZonesFile:     filepath.Join(root, "zones.json"),
		ScreenshotDir: filepath.Join(root, "screenshots"),
		LogDirectory:  filepath.Join(root, "logs"),
	}
	log := logger.NewLogger(cfg)

	db, err := sqlite.New(filepath.Join(root, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		cfg:    cfg,
		logger: log,
		store:  zone.NewStore(cfg.ZonesFile, log),
		draft:  zone.NewDraft(log),
		stream: &fakeStream{},
		db:     db,
	}
}

type fakeStream struct {
	paused bool
	status dto.StatusData
}

func (f *fakeStream) Pause()                 { f.paused = true }
func (f *fakeStream) Resume()                { f.paused = false }
func (f *fakeStream) Paused() bool           { return f.paused }
func (f *fakeStream) Status() dto.StatusData { return f.status }

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}
