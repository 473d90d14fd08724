package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"
	"zoneguard/internal/zone"
)

// StartDraftHandler enters drawing mode and pauses the stream so points can
// be placed on a still frame.
func StartDraftHandler(draft *zone.Draft, stream StreamController, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		stream.Pause()
		draft.Start()
		writeJSON(w, http.StatusOK, map[string]interface{}{"drawing": true, "points": draft.Points()}, logger)
	}
}

// DraftPointHandler appends the point in the body ([x,y]) to the draft.
func DraftPointHandler(draft *zone.Draft, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var p geometry.Point
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "Invalid point: "+err.Error(), http.StatusBadRequest)
			return
		}
		if !draft.AddPoint(p) {
			http.Error(w, "Drawing mode is not active", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"points": draft.Points()}, logger)
	}
}

// UndoDraftPointHandler removes the last drafted point.
func UndoDraftPointHandler(draft *zone.Draft, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		removed, ok := draft.RemoveLastPoint()
		if !ok {
			http.Error(w, "No point to remove", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed, "points": draft.Points()}, logger)
	}
}

// FinishDraftHandler commits the draft as a new zone. Drawing mode stays on
// so further zones can be drawn.
func FinishDraftHandler(draft *zone.Draft, store *zone.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		if err := draft.Finish(store); err != nil {
			if errors.Is(err, zone.ErrInvalidZone) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int{"index": store.Len() - 1, "zones": store.Len()}, logger)
	}
}

// CancelDraftHandler discards the draft, leaves drawing mode and resumes the stream.
func CancelDraftHandler(draft *zone.Draft, stream StreamController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		draft.Cancel()
		stream.Resume()
		w.WriteHeader(http.StatusNoContent)
	}
}
