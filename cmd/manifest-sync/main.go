package main

import (
	"flag"
	"fmt"
	"log"

	"recovery-engine/internal/config"
	"recovery-engine/internal/database"
	"recovery-engine/internal/logger"
	"recovery-engine/internal/manifest"

	"github.com/joho/godotenv"
)

var (
	manifestsDir = flag.String("manifests-dir", "data/order_manifests", "directory containing order_manifest_*.xlsx files")
	ordersJSON   = flag.String("orders-json", "data/orders.json", "path to orders.json with order metadata")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	nLog, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalln("Failed to create logger:", err)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	stats, err := manifest.SyncDir(db, *manifestsDir, *ordersJSON, nLog)
	if err != nil {
		log.Fatal("Manifest sync failed:", err)
	}

	rows, orders, err := manifest.Verify(db)
	if err != nil {
		log.Fatal("Verification query failed:", err)
	}

	fmt.Printf("\n--- Sync Complete ---\n")
	fmt.Printf("Files:         %d\n", stats.Files)
	fmt.Printf("Parsed rows:   %d\n", stats.Rows)
	fmt.Printf("Upserted:      %d rows (%d errors)\n", stats.Upserted, stats.Errors)
	fmt.Printf("Total in DB:   %d manifest rows\n", rows)
	fmt.Printf("Orders:        %d\n", orders)
}
