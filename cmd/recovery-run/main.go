package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"recovery-engine/internal/catalog"
	"recovery-engine/internal/comps"
	"recovery-engine/internal/config"
	"recovery-engine/internal/database"
	"recovery-engine/internal/ebay"
	"recovery-engine/internal/engine"
	"recovery-engine/internal/logger"

	"github.com/joho/godotenv"
)

var (
	outputFile = flag.String("output", "recovery_report.json", "output file path")
	queryLimit = flag.Int("limit", 0, "override per-run query budget, 0 uses config")
	timeout    = flag.Duration("timeout", 0, "overall run deadline, 0 for none")
	verbose    = flag.Bool("verbose", false, "print per-product progress")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if *queryLimit > 0 {
		cfg.QueryLimit = *queryLimit
	}

	nLog, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalln("Failed to create logger:", err)
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	store := catalog.NewStore(db)
	tokens := ebay.NewTokenSource(cfg.EbayAppID, cfg.EbayCertID, cfg.EbayTokenURL)
	cache := comps.NewCache(cfg.CompCacheTTL)
	client := ebay.NewClient(cfg.EbayAPIURL, tokens, cache, ebay.RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.RetryBaseDelay,
	}, cfg.IncludeShipping, nLog)

	policy := engine.Policy{
		FeeRate:               cfg.MarketplaceFeeRate,
		RecoveryThreshold:     cfg.RecoveryThreshold,
		DefaultRecoveryRate:   cfg.DefaultRecoveryRate,
		WholesaleRecoveryRate: cfg.WholesaleRecoveryRate,
	}
	eng := engine.New(store, client, policy, cfg.RequestDelay, cfg.QueryLimit, nLog)

	if *verbose {
		eng.SetProgressFunc(func(e engine.ProgressEvent) {
			marker := " "
			if e.Routable {
				marker = "*"
			}
			fmt.Printf("[%d/%d]%s %s recovery=%.2f queried=%v\n",
				e.Index, e.Total, marker, e.Name, e.RecoveryPct, e.Queried)
		})
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	report, err := eng.Run(ctx)
	if err != nil {
		log.Fatal("Batch run failed:", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode report:", err)
	}
	if err := os.WriteFile(*outputFile, data, 0o644); err != nil {
		log.Fatal("Failed to write report:", err)
	}

	fmt.Printf("\n--- Recovery Run Complete ---\n")
	fmt.Printf("Run ID:        %s\n", report.RunID)
	fmt.Printf("Products:      %d\n", report.ProductCount)
	fmt.Printf("Queries:       %d\n", report.QueriesIssued)
	fmt.Printf("Marketplace:   %d products, est. revenue $%.2f\n",
		report.Channels.Marketplace.Products, report.Channels.Marketplace.EstimatedRevenue)
	fmt.Printf("Wholesale:     %d products, est. revenue $%.2f\n",
		report.Channels.Wholesale.Products, report.Channels.Wholesale.EstimatedRevenue)
	fmt.Printf("Elapsed:       %s\n", time.Duration(report.ElapsedMillis)*time.Millisecond)
	if report.Degraded {
		fmt.Printf("DEGRADED:      %s\n", report.DegradedReason)
	}
	fmt.Printf("Report:        %s\n", *outputFile)
}
