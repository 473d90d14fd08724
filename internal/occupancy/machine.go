// Package occupancy tracks per-zone alarm state from per-frame person detections.
//
// Alarms switch on in the first frame a detection falls inside a zone and
// switch off only after no detection has been inside for the silence window,
// so short detection gaps do not make the alarm flicker.
package occupancy

import (
	"sync"
	"time"
	"zoneguard/internal/geometry"
)

// DefaultSilence is how long a zone must stay empty before its alarm clears.
const DefaultSilence = 3 * time.Second

// State is the occupancy record of one zone. AlarmOn implies LastInside != nil.
type State struct {
	AlarmOn    bool
	LastInside *time.Time
}

// ZoneEvent is the per-frame result for one zone.
type ZoneEvent struct {
	Zone      int  `json:"zone"`
	AlarmOn   bool `json:"alarmOn"`
	InsideAny bool `json:"insideAny"`
	Changed   bool `json:"changed"` // AlarmOn differs from the previous frame
}

// Machine owns one State per zone, index-parallel to the zone list.
type Machine struct {
	silence time.Duration
	states  []State
	mu      sync.Mutex
}

// NewMachine creates a machine with the given silence window.
// A non-positive value selects DefaultSilence.
func NewMachine(silence time.Duration) *Machine {
	if silence <= 0 {
		silence = DefaultSilence
	}
	return &Machine{silence: silence}
}

// Silence returns the configured silence window.
func (m *Machine) Silence() time.Duration {
	return m.silence
}

// Update applies one frame of detections and returns one event per zone.
// If the number of zones differs from the tracked states, every state is
// reset before the frame is evaluated; callers that need to know which
// alarms that dropped should call Reset first.
func (m *Machine) Update(detections []geometry.Point, zones []geometry.Polygon, now time.Time) []ZoneEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.states) != len(zones) {
		m.states = make([]State, len(zones))
	}

	events := make([]ZoneEvent, len(zones))
	for i, poly := range zones {
		st := &m.states[i]
		wasOn := st.AlarmOn

		insideAny := false
		for _, d := range detections {
			if geometry.Contains(d, poly) {
				insideAny = true
				break
			}
		}

		if insideAny {
			st.AlarmOn = true
			t := now
			st.LastInside = &t
		} else if st.AlarmOn {
			var last time.Time
			if st.LastInside != nil {
				last = *st.LastInside
			}
			if now.Sub(last) >= m.silence {
				st.AlarmOn = false
				st.LastInside = nil
			}
		}

		events[i] = ZoneEvent{
			Zone:      i,
			AlarmOn:   st.AlarmOn,
			InsideAny: insideAny,
			Changed:   st.AlarmOn != wasOn,
		}
	}

	return events
}

// Reset discards all zone states and returns the indices of zones whose
// alarm was on, so callers can record that those alarms ended. The next
// Update rebuilds the states from defaults.
func (m *Machine) Reset() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var alarmed []int
	for i, st := range m.states {
		if st.AlarmOn {
			alarmed = append(alarmed, i)
		}
	}
	m.states = nil
	return alarmed
}

// Len returns the number of zones currently tracked.
func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// States returns a copy of the current per-zone states.
func (m *Machine) States() []State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]State, len(m.states))
	for i, st := range m.states {
		out[i] = st
		if st.LastInside != nil {
			t := *st.LastInside
			out[i].LastInside = &t
		}
	}
	return out
}
