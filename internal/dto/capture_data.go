// CapturesData is a paginated response payload for the captures gallery.
package dto

type CapturesData struct {
	Captures    []CaptureInfo `json:"captures"`
	Size        int64         `json:"size"`
	Length      int           `json:"length"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Limit       int           `json:"pageSize"`
}
