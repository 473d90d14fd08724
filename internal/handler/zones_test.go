package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"zoneguard/internal/geometry"

	"github.com/google/go-cmp/cmp"
)

func TestZonesHandler_AddListRemove(t *testing.T) {
	env := setupTestEnv(t)
	h := ZonesHandler(env.store, env.logger)

	rr := do(t, h, http.MethodPost, "/api/zones", `[[100,100],[200,100],[200,200]]`)
	expectStatus(t, rr, http.StatusCreated)

	rr = do(t, h, http.MethodPost, "/api/zones", `[[0,0],[10,0],[10,10],[0,10]]`)
	expectStatus(t, rr, http.StatusCreated)

	rr = do(t, h, http.MethodGet, "/api/zones", "")
	expectStatus(t, rr, http.StatusOK)

	var zones []geometry.Polygon
	if err := json.Unmarshal(rr.Body.Bytes(), &zones); err != nil {
		t.Fatalf("Failed to decode zones: %v", err)
	}
	if len(zones) != 2 || len(zones[1]) != 4 {
		t.Fatalf("unexpected zones %v", zones)
	}

	rr = do(t, h, http.MethodDelete, "/api/zones?index=0", "")
	expectStatus(t, rr, http.StatusOK)

	want := []geometry.Polygon{{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(10, 10), geometry.Pt(0, 10)}}
	if diff := cmp.Diff(want, env.store.Zones()); diff != "" {
		t.Errorf("unexpected zones after delete (-want +got):\n%s", diff)
	}
}

func TestZonesHandler_Errors(t *testing.T) {
	env := setupTestEnv(t)
	h := ZonesHandler(env.store, env.logger)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"two points", http.MethodPost, "/api/zones", `[[0,0],[1,1]]`, http.StatusBadRequest},
		{"not json", http.MethodPost, "/api/zones", `zone`, http.StatusBadRequest},
		{"missing index", http.MethodDelete, "/api/zones", "", http.StatusBadRequest},
		{"unknown index", http.MethodDelete, "/api/zones?index=3", "", http.StatusNotFound},
		{"bad method", http.MethodPut, "/api/zones", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.target, tt.body)
			expectStatus(t, rr, tt.want)
		})
	}

	if env.store.Len() != 0 {
		t.Errorf("failed requests should not change zones, have %d", env.store.Len())
	}
}

func TestZonesHandler_SaveResetLoad(t *testing.T) {
	env := setupTestEnv(t)
	zones := ZonesHandler(env.store, env.logger)

	do(t, zones, http.MethodPost, "/api/zones", `[[1,2],[3,4],[5,0]]`)

	rr := do(t, SaveZonesHandler(env.store, env.logger), http.MethodPost, "/api/zones/save", "")
	expectStatus(t, rr, http.StatusOK)

	data, err := os.ReadFile(env.cfg.ZonesFile)
	if err != nil {
		t.Fatalf("zone file should exist: %v", err)
	}
	var saved [][][]int
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("zone file should be JSON: %v", err)
	}
	if diff := cmp.Diff([][][]int{{{1, 2}, {3, 4}, {5, 0}}}, saved); diff != "" {
		t.Errorf("unexpected file content (-want +got):\n%s", diff)
	}

	rr = do(t, ResetZonesHandler(env.store, env.logger), http.MethodPost, "/api/zones/reset", "")
	expectStatus(t, rr, http.StatusNoContent)
	if env.store.Len() != 0 {
		t.Fatal("reset should clear zones")
	}

	rr = do(t, LoadZonesHandler(env.store, env.logger), http.MethodPost, "/api/zones/load", "")
	expectStatus(t, rr, http.StatusOK)
	if env.store.Len() != 1 {
		t.Errorf("load should restore the saved zone, have %d", env.store.Len())
	}
}

func TestLoadZonesHandler_MalformedKeepsZones(t *testing.T) {
	env := setupTestEnv(t)
	do(t, ZonesHandler(env.store, env.logger), http.MethodPost, "/api/zones", `[[1,2],[3,4],[5,0]]`)

	if err := os.WriteFile(env.cfg.ZonesFile, []byte(`[[[1,2]`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rr := do(t, LoadZonesHandler(env.store, env.logger), http.MethodPost, "/api/zones/load", "")
	expectStatus(t, rr, http.StatusUnprocessableEntity)

	if env.store.Len() != 1 {
		t.Errorf("malformed file should leave zones intact, have %d", env.store.Len())
	}
}

func TestLoadZonesHandler_MissingFile(t *testing.T) {
	env := setupTestEnv(t)

	rr := do(t, LoadZonesHandler(env.store, env.logger), http.MethodPost, "/api/zones/load", "")
	expectStatus(t, rr, http.StatusOK)

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["found"] != false {
		t.Errorf("expected found=false, got %v", body["found"])
	}
}
