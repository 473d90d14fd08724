package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"zoneguard/internal/capture"
	"zoneguard/internal/config"
	"zoneguard/internal/detection"
	"zoneguard/internal/dto"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"
	"zoneguard/internal/model"
	"zoneguard/internal/occupancy"
	"zoneguard/internal/repository"
	"zoneguard/internal/service/annotate"
	"zoneguard/internal/service/source"
	"zoneguard/internal/service/storage"
	"zoneguard/internal/service/websocket"
	"zoneguard/internal/zone"

	"gocv.io/x/gocv"
)

// pausedRefresh is how often the held frame is re-rendered while paused.
const pausedRefresh = 200 * time.Millisecond

// Detector finds objects in a frame.
type Detector interface {
	DetectObjects(frame gocv.Mat) ([]detection.Result, error)
}

// Manager owns the frame loop. It is the only caller of Machine.Update and
// of the limiter's mutating methods.
type Manager struct {
	store    *zone.Store
	draft    *zone.Draft
	machine  *occupancy.Machine
	limiter  *capture.Limiter
	detector Detector
	sink     capture.Sink

	bufferService    *storage.BufferService
	websocketService *websocket.HubService
	alarmRepo        repository.AlarmRepository
	logger           *logger.Logger

	personClassID int
	revision      atomic.Uint64 // store revision the per-zone state belongs to
	detectFailing bool

	mu        sync.RWMutex
	paused    bool
	lastFrame gocv.Mat
	hasFrame  bool
}

// step is the outcome of evaluating one frame's detections.
type step struct {
	zones    []geometry.Polygon
	events   []occupancy.ZoneEvent
	captures []int
}

func (s step) alarms() []bool {
	alarms := make([]bool, len(s.events))
	for i, ev := range s.events {
		alarms[i] = ev.AlarmOn
	}
	return alarms
}

func (s step) alarmedZones() []int {
	zones := []int{}
	for _, ev := range s.events {
		if ev.AlarmOn {
			zones = append(zones, ev.Zone)
		}
	}
	return zones
}

func NewManager(
	cfg *config.Config,
	store *zone.Store,
	draft *zone.Draft,
	detector Detector,
	sink capture.Sink,
	bufferService *storage.BufferService,
	websocketService *websocket.HubService,
	alarmRepo repository.AlarmRepository,
	logger *logger.Logger,
) *Manager {
	m := &Manager{
		store:            store,
		draft:            draft,
		machine:          occupancy.NewMachine(seconds(cfg.AlarmSilence)),
		limiter:          capture.NewLimiter(seconds(cfg.CaptureInterval)),
		detector:         detector,
		sink:             sink,
		bufferService:    bufferService,
		websocketService: websocketService,
		alarmRepo:        alarmRepo,
		logger:           logger,
		personClassID:    cfg.PersonClassID,
		lastFrame:        gocv.NewMat(),
	}

	m.revision.Store(store.Revision())

	m.logger.Info("Manager started - alarm silence %v, capture interval %v, capture source %s",
		m.machine.Silence(), m.limiter.Interval(), sink.Name())
	return m
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Run processes frames from src until ctx is cancelled or the stream ends.
func (m *Manager) Run(ctx context.Context, src source.Source) error {
	frame := gocv.NewMat()
	defer frame.Close()

	ticker := time.NewTicker(pausedRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if m.Paused() {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				m.renderPaused(time.Now())
			}
			continue
		}

		if err := src.Read(&frame); err != nil {
			if errors.Is(err, source.ErrEndOfStream) {
				m.logger.Info("End of stream or cannot read the frame")
				return nil
			}
			if errors.Is(err, source.ErrNoFrame) {
				continue
			}
			m.logger.Error("Error reading frame: %v", err)
			continue
		}

		m.ProcessFrame(frame, time.Now())
	}
}

// ProcessFrame runs detection, the zone state machine and capture decisions
// on one frame, then annotates it, stores evidence and notifies viewers.
func (m *Manager) ProcessFrame(frame gocv.Mat, now time.Time) {
	m.rememberFrame(frame)

	persons := m.detectPersons(frame)
	st := m.evaluate(detection.Centroids(persons), now)

	display := frame.Clone()
	defer display.Close()

	annotate.Draw(&display, annotate.Scene{
		Persons: persons,
		Zones:   st.zones,
		Alarms:  st.alarms(),
		Draft:   m.draft.Points(),
		Drawing: m.draft.Active(),
	})

	jpeg, err := encodeJPEG(display)
	if err != nil {
		m.logger.Error("Failed to encode frame: %v", err)
	}

	for _, z := range st.captures {
		m.grabEvidence(capture.Trigger{Zone: z, Time: now, Frame: jpeg})
	}

	if jpeg != nil {
		m.sendToViewers(jpeg, st.alarmedZones(), len(persons), now)
	}
}

func (m *Manager) detectPersons(frame gocv.Mat) []detection.Result {
	results, err := m.detector.DetectObjects(frame)
	if err != nil {
		if !m.detectFailing {
			m.logger.Error("Error detecting objects: %v", err)
			m.detectFailing = true
		}
		return nil
	}
	if m.detectFailing {
		m.logger.Info("Object detection recovered")
		m.detectFailing = false
	}
	return detection.Persons(results, m.personClassID)
}

// evaluate advances the occupancy state and decides which zones to capture.
// A structural zone change since the last frame resets all per-zone state.
func (m *Manager) evaluate(centroids []geometry.Point, now time.Time) step {
	rev := m.store.Revision()
	zones := m.store.Zones()
	if rev != m.revision.Load() || m.machine.Len() != len(zones) {
		if rev != m.revision.Load() {
			m.revision.Store(rev)
			m.logger.Info("Zones changed, per-zone state reset")
		}
		// Alarms dropped by the reset end here.
		for _, z := range m.machine.Reset() {
			m.recordAlarm(occupancy.ZoneEvent{Zone: z, Changed: true}, now)
		}
		m.limiter.Reset()
	}

	events := m.machine.Update(centroids, zones, now)
	m.limiter.Sync(len(zones))

	st := step{zones: zones, events: events}
	for _, ev := range events {
		if ev.Changed {
			m.recordAlarm(ev, now)
		}
		if m.limiter.ShouldCapture(ev.Zone, ev.AlarmOn, now) {
			// Recorded before the grab: a failed capture still waits a full interval.
			m.limiter.RecordCapture(ev.Zone, now)
			st.captures = append(st.captures, ev.Zone)
		}
	}
	return st
}

func (m *Manager) recordAlarm(ev occupancy.ZoneEvent, now time.Time) {
	if ev.AlarmOn {
		m.logger.Warning("ALARM: intrusion in %s", annotate.ZoneLabel(ev.Zone))
	} else {
		m.logger.Info("Alarm cleared in %s", annotate.ZoneLabel(ev.Zone))
	}

	if m.alarmRepo == nil {
		return
	}
	if err := m.alarmRepo.Insert(&model.AlarmEvent{Zone: ev.Zone, AlarmOn: ev.AlarmOn, Timestamp: now}); err != nil {
		m.logger.Error("Error saving alarm event: %v", err)
	}
}

func (m *Manager) grabEvidence(trigger capture.Trigger) {
	art, err := m.sink.Grab(trigger)
	if err != nil {
		m.logger.Error("Failed to capture evidence for %s: %v", annotate.ZoneLabel(trigger.Zone), err)
		return
	}
	m.bufferService.AddCapture(trigger.Zone, trigger.Time, m.sink.Name(), art)
}

func (m *Manager) sendToViewers(jpeg []byte, alarms []int, persons int, now time.Time) {
	if m.websocketService == nil {
		return
	}
	msg, err := json.Marshal(dto.FrameMessage{
		Image:   base64.StdEncoding.EncodeToString(jpeg),
		Alarms:  alarms,
		Persons: persons,
		Time:    now,
	})
	if err != nil {
		m.logger.Error("Failed to marshal frame message: %v", err)
		return
	}
	m.websocketService.Broadcast(msg)
}

func (m *Manager) rememberFrame(frame gocv.Mat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	frame.CopyTo(&m.lastFrame)
	m.hasFrame = true
}

// renderPaused shows the held frame with zones, the draft and current alarm
// state. The state machine is not advanced while paused.
func (m *Manager) renderPaused(now time.Time) {
	m.mu.RLock()
	if !m.hasFrame {
		m.mu.RUnlock()
		return
	}
	display := m.lastFrame.Clone()
	m.mu.RUnlock()
	defer display.Close()

	zones := m.store.Zones()
	alarms := make([]bool, len(zones))
	var alarmed []int
	if m.store.Revision() == m.revision.Load() {
		for i, s := range m.machine.States() {
			if i < len(alarms) && s.AlarmOn {
				alarms[i] = true
				alarmed = append(alarmed, i)
			}
		}
	}

	annotate.Draw(&display, annotate.Scene{
		Zones:   zones,
		Alarms:  alarms,
		Draft:   m.draft.Points(),
		Drawing: m.draft.Active(),
		Paused:  true,
	})

	jpeg, err := encodeJPEG(display)
	if err != nil {
		m.logger.Error("Failed to encode frame: %v", err)
		return
	}
	m.sendToViewers(jpeg, alarmed, 0, now)
}

func encodeJPEG(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Pause stops frame processing; the last frame keeps being shown.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.paused {
		m.paused = true
		m.logger.Info("Stream paused")
	}
}

func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused {
		m.paused = false
		m.logger.Info("Stream resumed")
	}
}

func (m *Manager) Paused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// Status reports zones with their occupancy and capture state. Per-zone
// state is omitted for zones the frame loop has not evaluated yet.
func (m *Manager) Status() dto.StatusData {
	zones := m.store.Zones()
	states := m.machine.States()
	captures := m.limiter.LastCaptures()
	if len(states) != len(zones) || m.store.Revision() != m.revision.Load() {
		states = nil
		captures = nil
	}
	if len(captures) != len(zones) {
		captures = nil
	}

	data := dto.StatusData{
		Zones:   make([]dto.ZoneStatus, len(zones)),
		Drawing: m.draft.Active(),
		Draft:   m.draft.Points(),
		Paused:  m.Paused(),
	}

	for i, z := range zones {
		zs := dto.ZoneStatus{Index: i, Label: annotate.ZoneLabel(i), Polygon: z}
		if states != nil {
			zs.AlarmOn = states[i].AlarmOn
			zs.LastInside = states[i].LastInside
		}
		if captures != nil && !captures[i].IsZero() {
			t := captures[i]
			zs.LastCapture = &t
		}
		if zs.AlarmOn {
			data.AnyAlarm = true
		}
		data.Zones[i] = zs
	}
	return data
}

// Close releases the held frame.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFrame.Close()
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

func (m *Manager) GetBufferService() *storage.BufferService {
	return m.bufferService
}

func (m *Manager) Store() *zone.Store {
	return m.store
}

func (m *Manager) Draft() *zone.Draft {
	return m.draft
}
