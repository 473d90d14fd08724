package model

import "time"

// Capture is a stored evidence image taken while a zone was alarmed.
type Capture struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Zone      int       `json:"zone"`
	Source    string    `json:"source"` // sink that produced it: "frame" or "screen"
	Timestamp time.Time `json:"timestamp"`
	FilePath  string    `json:"filepath"`
	FileSize  int64     `json:"filesize"`
}

// CaptureStats contains statistics about stored captures.
type CaptureStats struct {
	TotalCaptures  int         `json:"total_captures"`
	TotalSizeBytes int64       `json:"total_size_bytes"`
	PerZone        map[int]int `json:"per_zone"`
}
