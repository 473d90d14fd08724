package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	CaptureSourceFrame  = "frame"
	CaptureSourceScreen = "screen"
)

type Config struct {
	Port               int
	Password           string
	Source             string // video file path, stream URL or camera index ("0")
	ModelPath          string
	ConfigPath         string
	PersonClassID      int     // 1 for SSD MobileNet COCO, 0 for YOLO exports
	DetectionThreshold float64 // minimum detector confidence
	ZonesFile          string
	ScreenshotDir      string
	CaptureSource      string  // "frame" (annotated frame) or "screen" (full display)
	AlarmSilence       float64 // seconds without a person before an alarm clears
	CaptureInterval    float64 // minimum seconds between captures per zone
	FlushInterval      int     // seconds between evidence flushes to disk
	DatabasePath       string
	LogDirectory       string
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are applied first; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnvAsInt("PORT", 8080),
		Password:           getEnv("PASSWORD", "zoneguard"),
		Source:             getEnv("SOURCE", "0"),
		ModelPath:          getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ConfigPath:         getEnv("CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		PersonClassID:      getEnvAsInt("PERSON_CLASS_ID", 1),
		DetectionThreshold: getEnvAsFloat("DETECTION_THRESHOLD", 0.5),
		ZonesFile:          getEnv("ZONES_FILE", "restricted_zones.json"),
		ScreenshotDir:      getEnv("SCREENSHOT_DIR", "screenshots"),
		CaptureSource:      getEnv("CAPTURE_SOURCE", CaptureSourceFrame),
		AlarmSilence:       getEnvAsFloat("ALARM_SILENCE_SECONDS", 3.0),
		CaptureInterval:    getEnvAsFloat("CAPTURE_INTERVAL_SECONDS", 5.0),
		FlushInterval:      getEnvAsInt("FLUSH_INTERVAL", 2),
		DatabasePath:       getEnv("DB_PATH", filepath.Join(".", "data", "zoneguard.db")),
		LogDirectory:       getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
