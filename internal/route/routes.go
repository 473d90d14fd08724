package route

import (
	"net/http"
	"os"
	"path/filepath"
	"zoneguard/internal/config"
	"zoneguard/internal/handler"
	"zoneguard/internal/logger"
	"zoneguard/internal/middleware"
	"zoneguard/internal/repository"
	"zoneguard/internal/service/websocket"
	"zoneguard/internal/zone"
)

// staticDir holds the HTML pages and assets of the control panel.
const staticDir = "static"

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, store *zone.Store, draft *zone.Draft,
	stream handler.StreamController, hub *websocket.HubService,
	captureRepo repository.CaptureRepository, alarmRepo repository.AlarmRepository) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// Live view
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(hub, logger))

	// Zones
	mux.HandleFunc("/api/zones", handler.ZonesHandler(store, logger))
	mux.HandleFunc("/api/zones/reset", handler.ResetZonesHandler(store, logger))
	mux.HandleFunc("/api/zones/save", handler.SaveZonesHandler(store, logger))
	mux.HandleFunc("/api/zones/load", handler.LoadZonesHandler(store, logger))

	// Drawing
	mux.HandleFunc("/api/draft/start", handler.StartDraftHandler(draft, stream, logger))
	mux.HandleFunc("/api/draft/point", handler.DraftPointHandler(draft, logger))
	mux.HandleFunc("/api/draft/undo", handler.UndoDraftPointHandler(draft, logger))
	mux.HandleFunc("/api/draft/finish", handler.FinishDraftHandler(draft, store, logger))
	mux.HandleFunc("/api/draft/cancel", handler.CancelDraftHandler(draft, stream))

	// Stream control and state
	mux.HandleFunc("/api/stream/pause", handler.PauseStreamHandler(stream, logger))
	mux.HandleFunc("/api/stream/resume", handler.ResumeStreamHandler(stream, logger))
	mux.HandleFunc("/api/status", handler.StatusHandler(stream, logger))

	// Evidence and alarm history
	mux.HandleFunc("/api/captures", handler.GetCapturesHandler(logger, captureRepo))
	mux.HandleFunc("/api/captures/view", handler.ViewCaptureHandler(cfg))
	mux.HandleFunc("/api/captures/delete", handler.DeleteCaptureHandler(cfg, logger, captureRepo))
	mux.HandleFunc("/api/captures/clear", handler.ClearCapturesHandler(cfg, logger, captureRepo))
	mux.HandleFunc("/api/alarms", handler.GetAlarmsHandler(logger, alarmRepo))

	// Log endpoints
	for _, level := range []string{"info", "warning", "error"} {
		file := level + ".log"
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(logger, file))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler)

	// Automatic HTML handler mapping for example: /captures -> /static/captures.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	// Apply middleware
	return middleware.AuthMiddleware(mux)
}
