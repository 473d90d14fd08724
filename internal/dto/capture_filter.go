// CaptureFilters describe user-provided filters to narrow the capture list.
package dto

import "time"

// AllZones disables zone filtering.
const AllZones = -1

type CaptureFilters struct {
	Zone       int
	DateAfter  time.Time
	DateBefore time.Time
	Limit      int
	Offset     int
}
