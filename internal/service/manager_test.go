package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
	"zoneguard/internal/capture"
	"zoneguard/internal/config"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"
	"zoneguard/internal/model"
	"zoneguard/internal/occupancy"
	"zoneguard/internal/service/storage"
	"zoneguard/internal/zone"

	"github.com/google/go-cmp/cmp"
)

var t0 = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

type fakeAlarmRepo struct {
	events []model.AlarmEvent
}

func (f *fakeAlarmRepo) Insert(ev *model.AlarmEvent) error {
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeAlarmRepo) GetRecent(int) ([]model.AlarmEvent, error)      { return f.events, nil }
func (f *fakeAlarmRepo) GetByZone(int, int) ([]model.AlarmEvent, error) { return f.events, nil }

type failingSink struct{}

func (failingSink) Name() string { return "failing" }
func (failingSink) Grab(capture.Trigger) (capture.Artifact, error) {
	return capture.Artifact{}, errors.New("no display")
}

func square(x, y, size int) geometry.Polygon {
	return geometry.Polygon{geometry.Pt(x, y), geometry.Pt(x+size, y), geometry.Pt(x+size, y+size), geometry.Pt(x, y+size)}
}

// newTestManager builds a Manager without video or detector resources so the
// per-frame decision logic can run on plain centroids.
func newTestManager(t *testing.T, sink capture.Sink, zones ...geometry.Polygon) (*Manager, *fakeAlarmRepo) {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		LogDirectory:  filepath.Join(root, "logs"),
		ScreenshotDir: filepath.Join(root, "screenshots"),
		FlushInterval: 1,
	}
	log := logger.NewLogger(cfg)

	store := zone.NewStore(filepath.Join(root, "zones.json"), log)
	for _, z := range zones {
		if err := store.Add(z); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	repo := &fakeAlarmRepo{}
	m := &Manager{
		store:         store,
		draft:         zone.NewDraft(log),
		machine:       occupancy.NewMachine(0),
		limiter:       capture.NewLimiter(0),
		sink:          sink,
		bufferService: storage.NewBufferService(cfg, log, nil),
		alarmRepo:     repo,
		logger:        log,
		personClassID: 0,
	}
	m.revision.Store(store.Revision())
	return m, repo
}

func TestManager_EvaluateRaisesAndClearsAlarm(t *testing.T) {
	m, repo := newTestManager(t, capture.FrameSink{}, square(100, 100, 100))

	st := m.evaluate([]geometry.Point{geometry.Pt(150, 150)}, t0)
	if diff := cmp.Diff([]bool{true}, st.alarms()); diff != "" {
		t.Errorf("unexpected alarms (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, st.captures); diff != "" {
		t.Errorf("first alarmed frame should capture (-want +got):\n%s", diff)
	}

	st = m.evaluate(nil, t0.Add(time.Second))
	if !st.events[0].AlarmOn || len(st.captures) != 0 {
		t.Errorf("alarm should linger without a capture, got %+v", st)
	}

	st = m.evaluate(nil, t0.Add(3*time.Second))
	if st.events[0].AlarmOn {
		t.Error("alarm should clear after the silence window")
	}

	want := []model.AlarmEvent{
		{Zone: 0, AlarmOn: true, Timestamp: t0},
		{Zone: 0, AlarmOn: false, Timestamp: t0.Add(3 * time.Second)},
	}
	if diff := cmp.Diff(want, repo.events); diff != "" {
		t.Errorf("unexpected alarm log (-want +got):\n%s", diff)
	}
}

func TestManager_CaptureCadence(t *testing.T) {
	m, _ := newTestManager(t, capture.FrameSink{}, square(0, 0, 100))

	var captured []time.Duration
	for ms := 0; ms <= 12000; ms += 100 {
		now := t0.Add(time.Duration(ms) * time.Millisecond)
		st := m.evaluate([]geometry.Point{geometry.Pt(50, 50)}, now)
		if len(st.captures) > 0 {
			captured = append(captured, now.Sub(t0))
		}
	}

	want := []time.Duration{0, 5 * time.Second, 10 * time.Second}
	if diff := cmp.Diff(want, captured); diff != "" {
		t.Errorf("unexpected capture times (-want +got):\n%s", diff)
	}
}

func TestManager_ZoneChangeResetsState(t *testing.T) {
	m, _ := newTestManager(t, capture.FrameSink{}, square(0, 0, 100), square(200, 0, 100))

	m.evaluate([]geometry.Point{geometry.Pt(50, 50)}, t0)
	if !m.Status().Zones[0].AlarmOn {
		t.Fatal("zone 1 should be alarmed")
	}

	// Same zone count, different geometry: only the revision reveals the change.
	if err := m.store.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := m.store.Add(square(400, 0, 100)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	status := m.Status()
	if status.Zones[0].AlarmOn {
		t.Error("status should not report state from before the zone change")
	}

	st := m.evaluate(nil, t0.Add(100*time.Millisecond))
	for _, ev := range st.events {
		if ev.AlarmOn {
			t.Errorf("zone %d should be reset after a zone change", ev.Zone)
		}
	}
}

func TestManager_ZoneChangeEndsLoggedAlarm(t *testing.T) {
	m, repo := newTestManager(t, capture.FrameSink{}, square(0, 0, 100))

	m.evaluate([]geometry.Point{geometry.Pt(50, 50)}, t0)
	if err := m.store.Add(square(200, 0, 100)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	m.evaluate(nil, t0.Add(500*time.Millisecond))

	want := []model.AlarmEvent{
		{Zone: 0, AlarmOn: true, Timestamp: t0},
		{Zone: 0, AlarmOn: false, Timestamp: t0.Add(500 * time.Millisecond)},
	}
	if diff := cmp.Diff(want, repo.events); diff != "" {
		t.Errorf("every logged alarm should be closed (-want +got):\n%s", diff)
	}
}

func TestManager_ZoneResetEndsLoggedAlarm(t *testing.T) {
	m, repo := newTestManager(t, capture.FrameSink{}, square(0, 0, 100), square(200, 0, 100))

	m.evaluate([]geometry.Point{geometry.Pt(50, 50), geometry.Pt(250, 50)}, t0)
	m.store.Reset()
	st := m.evaluate(nil, t0.Add(time.Second))
	if len(st.events) != 0 {
		t.Fatalf("expected no events without zones, got %d", len(st.events))
	}

	if len(repo.events) != 4 {
		t.Fatalf("expected 2 on and 2 off events, got %+v", repo.events)
	}
	for _, ev := range repo.events[2:] {
		if ev.AlarmOn {
			t.Errorf("expected off event, got %+v", ev)
		}
	}
}

func TestManager_FailedGrabStillWaitsInterval(t *testing.T) {
	m, _ := newTestManager(t, failingSink{}, square(0, 0, 100))

	st := m.evaluate([]geometry.Point{geometry.Pt(50, 50)}, t0)
	for _, z := range st.captures {
		m.grabEvidence(capture.Trigger{Zone: z, Time: t0})
	}
	if m.bufferService.Pending() != 0 {
		t.Error("nothing should be buffered when the sink fails")
	}

	st = m.evaluate([]geometry.Point{geometry.Pt(50, 50)}, t0.Add(time.Second))
	if len(st.captures) != 0 {
		t.Error("a failed capture should still start the capture interval")
	}
}

func TestManager_GrabEvidenceBuffersArtifact(t *testing.T) {
	m, _ := newTestManager(t, capture.FrameSink{}, square(0, 0, 100))

	m.grabEvidence(capture.Trigger{Zone: 0, Time: t0, Frame: []byte{0xFF, 0xD8, 0xFF, 0xD9}})
	if m.bufferService.Pending() != 1 {
		t.Errorf("expected 1 buffered capture, got %d", m.bufferService.Pending())
	}
}

func TestManager_Status(t *testing.T) {
	m, _ := newTestManager(t, capture.FrameSink{}, square(0, 0, 100), square(200, 0, 100))

	status := m.Status()
	if len(status.Zones) != 2 || status.AnyAlarm {
		t.Fatalf("unexpected initial status %+v", status)
	}

	m.evaluate([]geometry.Point{geometry.Pt(250, 50)}, t0)
	m.Pause()
	m.draft.Start()
	m.draft.AddPoint(geometry.Pt(1, 2))

	status = m.Status()
	if !status.AnyAlarm || status.Zones[0].AlarmOn || !status.Zones[1].AlarmOn {
		t.Errorf("expected only zone 2 alarmed, got %+v", status.Zones)
	}
	if status.Zones[1].Label != "Zone 2" {
		t.Errorf("expected label Zone 2, got %s", status.Zones[1].Label)
	}
	if status.Zones[1].LastCapture == nil || !status.Zones[1].LastCapture.Equal(t0) {
		t.Errorf("expected last capture at t0, got %v", status.Zones[1].LastCapture)
	}
	if status.Zones[0].LastCapture != nil {
		t.Error("zone 1 was never captured")
	}
	if !status.Paused || !status.Drawing || len(status.Draft) != 1 {
		t.Errorf("unexpected control state %+v", status)
	}

	m.Resume()
	if m.Paused() {
		t.Error("Resume should clear the paused flag")
	}
}
