package dto

import (
	"time"
	"zoneguard/internal/geometry"
)

// ZoneStatus is one zone with its current occupancy state.
type ZoneStatus struct {
	Index       int              `json:"index"`
	Label       string           `json:"label"`
	Polygon     geometry.Polygon `json:"polygon"`
	AlarmOn     bool             `json:"alarmOn"`
	LastInside  *time.Time       `json:"lastInside,omitempty"`
	LastCapture *time.Time       `json:"lastCapture,omitempty"`
}

// StatusData is the response of the status endpoint.
type StatusData struct {
	Zones    []ZoneStatus     `json:"zones"`
	Drawing  bool             `json:"drawing"`
	Draft    geometry.Polygon `json:"draft"`
	Paused   bool             `json:"paused"`
	AnyAlarm bool             `json:"anyAlarm"`
}

// FrameMessage is broadcast to viewers for every processed frame.
type FrameMessage struct {
	Image   string    `json:"image"` // base64 JPEG
	Alarms  []int     `json:"alarms"`
	Persons int       `json:"persons"`
	Time    time.Time `json:"time"`
}
