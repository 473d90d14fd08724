package model

import "time"

// AlarmEvent records a zone alarm switching on or off.
type AlarmEvent struct {
	ID        string    `json:"id"`
	Zone      int       `json:"zone"`
	AlarmOn   bool      `json:"alarm_on"`
	Timestamp time.Time `json:"timestamp"`
}
