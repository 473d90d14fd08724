package handler

import (
	"net/http"
	"zoneguard/internal/logger"
	"zoneguard/internal/model"
	"zoneguard/internal/repository"
)

const maxAlarmEvents = 500

// GetAlarmsHandler returns recent alarm on/off events, newest first.
// Query: limit (default 50), zone (1-based) to restrict to one zone.
func GetAlarmsHandler(logger *logger.Logger, alarmRepo repository.AlarmRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		q := r.URL.Query()
		limit := atoiDefault(q.Get("limit"), 50)
		if limit > maxAlarmEvents {
			limit = maxAlarmEvents
		}

		var (
			events []model.AlarmEvent
			err    error
		)
		if zone := atoiDefault(q.Get("zone"), 0); zone > 0 {
			events, err = alarmRepo.GetByZone(zone-1, limit)
		} else {
			events, err = alarmRepo.GetRecent(limit)
		}
		if err != nil {
			logger.Error("Error querying alarm events: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if events == nil {
			events = []model.AlarmEvent{}
		}

		writeJSON(w, http.StatusOK, events, logger)
	}
}
