package dto

import "time"

// BufferedCapture holds evidence data before it is flushed to disk.
type BufferedCapture struct {
	Timestamp time.Time
	Zone      int
	Source    string
	Format    string
	Data      []byte
}
