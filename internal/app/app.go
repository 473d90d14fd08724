package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
	"zoneguard/internal/capture"
	"zoneguard/internal/config"
	"zoneguard/internal/logger"
	"zoneguard/internal/repository/sqlite"
	"zoneguard/internal/route"
	"zoneguard/internal/service"
	"zoneguard/internal/service/ai"
	"zoneguard/internal/service/source"
	"zoneguard/internal/service/storage"
	"zoneguard/internal/service/websocket"
	"zoneguard/internal/zone"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config        *config.Config
	logger        *logger.Logger
	db            *sqlite.DB
	captureRepo   *sqlite.CaptureRepository
	alarmRepo     *sqlite.AlarmRepository
	store         *zone.Store
	draft         *zone.Draft
	detector      *ai.DetectorService
	bufferService *storage.BufferService
	hubService    *websocket.HubService
	manager       *service.Manager
}

// NewApp wires every service from the environment configuration. It fails
// when the database cannot be opened or the zone file is malformed.
func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := zone.NewStore(cfg.ZonesFile, log)
	if _, err := store.Load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load zones: %w", err)
	}

	captureRepo := sqlite.NewCaptureRepository(db)
	alarmRepo := sqlite.NewAlarmRepository(db)

	draft := zone.NewDraft(log)
	detector := ai.NewDetectorService(cfg, log)
	buffer := storage.NewBufferService(cfg, log, captureRepo)
	hub := websocket.NewHubService(log)
	mng := service.NewManager(cfg, store, draft, detector, newSink(cfg, log), buffer, hub, alarmRepo, log)

	return &App{
		config:        cfg,
		logger:        log,
		db:            db,
		captureRepo:   captureRepo,
		alarmRepo:     alarmRepo,
		store:         store,
		draft:         draft,
		detector:      detector,
		bufferService: buffer,
		hubService:    hub,
		manager:       mng,
	}, nil
}

// newSink selects where evidence captures come from.
func newSink(cfg *config.Config, log *logger.Logger) capture.Sink {
	switch cfg.CaptureSource {
	case config.CaptureSourceScreen:
		return capture.NewScreenSink()
	case config.CaptureSourceFrame:
		return capture.FrameSink{}
	default:
		log.Warning("Unknown capture source %q, using %q", cfg.CaptureSource, config.CaptureSourceFrame)
		return capture.FrameSink{}
	}
}

// Run starts the background services, the frame loop and the HTTP server,
// and blocks until ctx is cancelled or the server fails. The server keeps
// running after the video stream ends so evidence can still be reviewed.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, err := source.Open(a.config.Source, a.logger)
	if err != nil {
		return err
	}
	defer src.Close()

	go a.bufferService.Run(ctx)
	go a.hubService.Run(ctx)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := a.manager.Run(ctx, src); err != nil {
			a.logger.Error("Frame loop stopped: %v", err)
			return
		}
		a.logger.Info("Frame loop stopped")
	}()

	router := route.SetupRoutes(a.config, a.logger, a.store, a.draft, a.manager, a.hubService, a.captureRepo, a.alarmRepo)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	fmt.Printf("🚀 Restricted Zone Monitor\n")
	fmt.Printf("📍 URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("🎥 Source: %s\n", a.config.Source)
	fmt.Printf("🗺️  Zones: %s (%d loaded)\n", a.config.ZonesFile, a.store.Len())
	fmt.Printf("📁 Evidence: %s (%s)\n", a.config.ScreenshotDir, a.config.CaptureSource)
	fmt.Printf("🤖 AI Model: %s\n", a.config.ModelPath)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown: %v", err)
		}
		stop()
	}

	// The frame loop must be gone before the detector and database close.
	cancel()
	<-loopDone
	a.bufferService.FlushCaptures()
	return runErr
}

func (a *App) close() {
	a.manager.Close()
	if err := a.detector.Close(); err != nil {
		a.logger.Error("Failed to close detector: %v", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
}
