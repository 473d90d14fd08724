package dto

import (
	"encoding/json"
	"time"
)

// CaptureInfo is a capture as listed in the gallery.
type CaptureInfo struct {
	Name      string    `json:"name"`
	Zone      int       `json:"zone"`
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
	Size      int64     `json:"size"`
}

// MarshalJSON customizes JSON output for CaptureInfo to format date and time-of-day.
func (c CaptureInfo) MarshalJSON() ([]byte, error) {
	type Alias CaptureInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      c.Date.Format("02-01-2006"),
		TimeOfDay: c.TimeOfDay.Format("15:04:05"),
		Alias:     (Alias)(c),
	})
}
