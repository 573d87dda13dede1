package engine

import (
	"math"
	"testing"

	"recovery-engine/internal/models"
)

func measured(name, category string, retail float64, qty int, cost, median float64, samples int) models.ProductResult {
	return Estimate(models.Product{
		Name:       name,
		Category:   category,
		UnitRetail: retail,
		Quantity:   qty,
		UnitCost:   cost,
	}, models.CompResult{Median: median, SoldCount: samples}, testPolicy)
}

func TestAggregateCategorySumsMatchGrandTotal(t *testing.T) {
	results := []models.ProductResult{
		measured("A", "Vacuums", 100, 10, 20, 70, 25),
		measured("B", "Vacuums", 50, 4, 10, 20, 8),
		measured("C", "Kitchen", 80, 2, 15, 60, 30),
		EstimateDefaulted(models.Product{Name: "D", Category: "Kitchen", UnitRetail: 40, Quantity: 5, UnitCost: 5}, testPolicy),
	}

	categories, channels := Aggregate(results, testPolicy)

	var categoryRevenue, productRevenue float64
	for _, c := range categories {
		categoryRevenue += c.EstimatedRevenue
	}
	for _, r := range results {
		productRevenue += r.EstimatedRevenue
	}

	// One cent of rounding tolerance per category.
	if math.Abs(categoryRevenue-productRevenue) > 0.01*float64(len(categories)) {
		t.Fatalf("category revenue %v does not reconcile with product revenue %v", categoryRevenue, productRevenue)
	}

	channelRevenue := channels.Marketplace.EstimatedRevenue + channels.Wholesale.EstimatedRevenue
	if math.Abs(channelRevenue-productRevenue) > 0.02 {
		t.Fatalf("channel revenue %v does not reconcile with product revenue %v", channelRevenue, productRevenue)
	}
}

func TestAggregateUncategorizedBucket(t *testing.T) {
	results := []models.ProductResult{
		measured("No Category", "", 100, 1, 10, 50, 10),
	}

	categories, _ := Aggregate(results, testPolicy)
	if len(categories) != 1 {
		t.Fatalf("expected one category, got %d", len(categories))
	}
	if categories[0].Category != UncategorizedLabel {
		t.Fatalf("expected %q bucket, got %q", UncategorizedLabel, categories[0].Category)
	}
}

func TestAggregateWeightedRecovery(t *testing.T) {
	results := []models.ProductResult{
		measured("A", "Vacuums", 100, 10, 20, 70, 25), // retail 1000, revenue 700
		measured("B", "Vacuums", 100, 10, 20, 50, 25), // retail 1000, revenue 500
	}

	categories, _ := Aggregate(results, testPolicy)
	if len(categories) != 1 {
		t.Fatalf("expected one category, got %d", len(categories))
	}
	if !almostEqual(categories[0].WeightedRecovery, 0.60) {
		t.Fatalf("expected weighted recovery 1200/2000=0.60, got %v", categories[0].WeightedRecovery)
	}
}

func TestAggregateZeroRetailCategory(t *testing.T) {
	results := []models.ProductResult{
		measured("Free", "Samples", 0, 3, 0, 0, 0),
	}

	categories, _ := Aggregate(results, testPolicy)
	if categories[0].WeightedRecovery != 0 {
		t.Fatalf("zero retail total must produce zero weighted recovery, got %v", categories[0].WeightedRecovery)
	}
}

func TestAggregateChannelPartition(t *testing.T) {
	routable := measured("Good", "Vacuums", 100, 10, 20, 70, 25)
	if !routable.Routable {
		t.Fatalf("fixture should be routable: %+v", routable)
	}
	wholesale := measured("Weak", "Vacuums", 100, 5, 20, 30, 25) // recovery 0.30 < threshold
	defaulted := EstimateDefaulted(models.Product{Name: "Skipped", UnitRetail: 60, Quantity: 2, UnitCost: 5}, testPolicy)

	_, channels := Aggregate([]models.ProductResult{routable, wholesale, defaulted}, testPolicy)

	if channels.Marketplace.Products != 1 || channels.Wholesale.Products != 2 {
		t.Fatalf("unexpected partition: marketplace=%d wholesale=%d",
			channels.Marketplace.Products, channels.Wholesale.Products)
	}
	if channels.Marketplace.Items != 10 {
		t.Fatalf("expected 10 marketplace items, got %d", channels.Marketplace.Items)
	}
	if !almostEqual(channels.Marketplace.WeightedRecovery, 0.70) {
		t.Fatalf("expected marketplace weighted recovery 0.70, got %v", channels.Marketplace.WeightedRecovery)
	}
}

func TestAggregateCounterfactuals(t *testing.T) {
	results := []models.ProductResult{
		measured("A", "Vacuums", 100, 10, 20, 70, 25), // revenue 700, retail 1000
		measured("B", "Kitchen", 50, 2, 5, 20, 8),     // revenue 40, retail 100
	}

	_, channels := Aggregate(results, testPolicy)

	if !almostEqual(channels.AllMarketplace, 740) {
		t.Fatalf("expected all-marketplace revenue 740, got %v", channels.AllMarketplace)
	}
	// 1100 retail * 0.30 wholesale recovery
	if !almostEqual(channels.AllWholesale, 330) {
		t.Fatalf("expected all-wholesale revenue 330, got %v", channels.AllWholesale)
	}
}

func TestAggregateCategoryOrdering(t *testing.T) {
	results := []models.ProductResult{
		measured("Small", "Kitchen", 10, 1, 1, 5, 10),
		measured("Big", "Vacuums", 500, 10, 50, 300, 10),
	}

	categories, _ := Aggregate(results, testPolicy)
	if categories[0].Category != "Vacuums" {
		t.Fatalf("expected largest retail total first, got %q", categories[0].Category)
	}
}
