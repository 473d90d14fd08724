package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"zoneguard/internal/geometry"
	"zoneguard/internal/logger"
	"zoneguard/internal/zone"
)

// ZonesHandler lists zones (GET), adds one (POST, body [[x,y],...]) or
// removes the zone at ?index= (DELETE, 0-based).
func ZonesHandler(store *zone.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, store.Zones(), logger)

		case http.MethodPost:
			var poly geometry.Polygon
			if err := json.NewDecoder(r.Body).Decode(&poly); err != nil {
				http.Error(w, "Invalid polygon: "+err.Error(), http.StatusBadRequest)
				return
			}
			if err := store.Add(poly); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]int{"index": store.Len() - 1, "zones": store.Len()}, logger)

		case http.MethodDelete:
			index, err := strconv.Atoi(r.URL.Query().Get("index"))
			if err != nil {
				http.Error(w, "Index parameter is required", http.StatusBadRequest)
				return
			}
			if err := store.Remove(index); err != nil {
				if errors.Is(err, zone.ErrZoneNotFound) {
					http.Error(w, err.Error(), http.StatusNotFound)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"zones": store.Len()}, logger)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// ResetZonesHandler clears all zones in memory. The zone file is untouched.
func ResetZonesHandler(store *zone.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		store.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}

// SaveZonesHandler writes the zones to the zone file.
func SaveZonesHandler(store *zone.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		if err := store.Save(); err != nil {
			logger.Error("Failed to save zones: %v", err)
			http.Error(w, "Failed to save zones", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"path": store.Path(), "zones": store.Len()}, logger)
	}
}

// LoadZonesHandler replaces the zones with the zone file contents. A
// malformed file is rejected with 422 and the current zones are kept.
func LoadZonesHandler(store *zone.Store, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		found, err := store.Load()
		if err != nil {
			var parseErr *zone.ParseError
			if errors.As(err, &parseErr) {
				logger.Warning("Rejected zone file: %v", err)
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			logger.Error("Failed to load zones: %v", err)
			http.Error(w, "Failed to load zones", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"found": found, "zones": store.Len()}, logger)
	}
}
