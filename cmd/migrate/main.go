package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zoneguard/internal/config"
	"zoneguard/internal/model"
	"zoneguard/internal/repository/sqlite"
	"zoneguard/internal/service/storage"
)

func main() {
	capturesDir := flag.String("dir", "screenshots", "Directory containing evidence captures")
	dbPath := flag.String("db", "data/zoneguard.db", "Database path")
	flag.Parse()

	fmt.Printf("Importing captures from %s to database %s\n", *capturesDir, *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	repo := sqlite.NewCaptureRepository(db)

	files, err := os.ReadDir(*capturesDir)
	if err != nil {
		log.Fatalf("Failed to read captures directory: %v", err)
	}

	imported, existing, skipped := 0, 0, 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		zone, at, format, err := storage.ParseCaptureFilename(file.Name())
		if err != nil {
			log.Printf("⚠️  Skipping %s: %v", file.Name(), err)
			skipped++
			continue
		}

		if c, err := repo.GetByFilename(file.Name()); err == nil && c != nil {
			existing++
			continue
		}

		info, err := file.Info()
		if err != nil {
			log.Printf("⚠️  Failed to get info for %s: %v", file.Name(), err)
			skipped++
			continue
		}

		// Screen grabs are stored as PNG, frame captures as JPEG.
		source := config.CaptureSourceFrame
		if strings.EqualFold(format, "png") {
			source = config.CaptureSourceScreen
		}

		if _, err := repo.Insert(&model.Capture{
			Filename:  file.Name(),
			Zone:      zone,
			Source:    source,
			Timestamp: at,
			FilePath:  filepath.Join(*capturesDir, file.Name()),
			FileSize:  info.Size(),
		}); err != nil {
			log.Printf("⚠️  Failed to insert %s: %v", file.Name(), err)
			skipped++
			continue
		}
		imported++
	}

	fmt.Printf("✅ Imported %d captures (%d already present)\n", imported, existing)
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d files (invalid name or errors)\n", skipped)
	}

	stats, err := repo.GetStats()
	if err != nil {
		log.Printf("Failed to read statistics: %v", err)
		return
	}
	fmt.Printf("\n📊 Database Statistics:\n")
	fmt.Printf("   Total captures: %d\n", stats.TotalCaptures)
	fmt.Printf("   Total size: %d bytes\n", stats.TotalSizeBytes)
	zones := make([]int, 0, len(stats.PerZone))
	for z := range stats.PerZone {
		zones = append(zones, z)
	}
	sort.Ints(zones)
	fmt.Printf("   Per zone:\n")
	for _, z := range zones {
		label := fmt.Sprintf("zone %d", z+1)
		if z == storage.UnknownZone {
			label = "unknown"
		}
		fmt.Printf("      - %s: %d captures\n", label, stats.PerZone[z])
	}
}
