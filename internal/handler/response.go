package handler

import (
	"encoding/json"
	"net/http"
	"zoneguard/internal/dto"
	"zoneguard/internal/logger"
)

// StreamController is the part of the frame loop the HTTP surface drives.
type StreamController interface {
	Pause()
	Resume()
	Paused() bool
	Status() dto.StatusData
}

// allowMethod writes 405 and returns false unless r uses one of methods.
func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
