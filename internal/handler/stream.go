package handler

import (
	"net/http"
	"zoneguard/internal/logger"
)

// PauseStreamHandler stops frame processing; viewers keep the last frame.
func PauseStreamHandler(stream StreamController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		stream.Pause()
		writeJSON(w, http.StatusOK, map[string]bool{"paused": stream.Paused()}, logger)
	}
}

// ResumeStreamHandler restarts frame processing.
func ResumeStreamHandler(stream StreamController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		stream.Resume()
		writeJSON(w, http.StatusOK, map[string]bool{"paused": stream.Paused()}, logger)
	}
}

// StatusHandler returns zones with their alarm and capture state.
func StatusHandler(stream StreamController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, http.StatusOK, stream.Status(), logger)
	}
}
