package models

import (
	"time"
)

// ManifestItem is one product row parsed from a liquidation order manifest.
// Rows are unique per (order_id, listing_id, product_name, upc).
type ManifestItem struct {
	ID                   uint    `json:"id" gorm:"primaryKey"`
	OrderID              string  `json:"order_id" gorm:"size:20;not null;index;uniqueIndex:idx_manifest_row,priority:1"`
	ListingID            string  `json:"listing_id" gorm:"size:20;uniqueIndex:idx_manifest_row,priority:2"`
	ListingTitle         string  `json:"listing_title" gorm:"type:text"`
	Category             string  `json:"category" gorm:"size:255;index"`
	ProductName          string  `json:"product_name" gorm:"size:500;uniqueIndex:idx_manifest_row,priority:3"`
	UPC                  string  `json:"upc" gorm:"size:20;index;uniqueIndex:idx_manifest_row,priority:4"`
	ASIN                 string  `json:"asin" gorm:"size:20"`
	Quantity             int     `json:"quantity" gorm:"default:1"`
	UnitRetail           float64 `json:"unit_retail"`
	TotalRetail          float64 `json:"total_retail"`
	OrderDate            string  `json:"order_date" gorm:"size:50"`
	LineItemBrands       string  `json:"line_item_brands" gorm:"size:500"`
	AllocatedCOGSPerUnit float64 `json:"allocated_cogs_per_unit" gorm:"default:0"`
	CreatedAt            time.Time `json:"created_at"`
}

// Product is one aggregated catalog entry awaiting resale. Rows from the
// manifest table sharing the same UPC, name, category and retail price are
// collapsed into a single product with summed quantity. Immutable for the
// duration of a batch run.
type Product struct {
	UPC        string  `json:"upc"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Brand      string  `json:"brand"`
	UnitRetail float64 `json:"unit_retail"` // reference price the recovery rate is measured against
	Quantity   int     `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"` // allocated acquisition cost per unit
}

// CompResult holds the price statistics for one sold-listings query.
type CompResult struct {
	Median    float64   `json:"median"`
	Mean      float64   `json:"mean"`
	P25       float64   `json:"p25"`
	P75       float64   `json:"p75"`
	SoldCount int       `json:"sold_count"`
	Prices    []float64 `json:"prices,omitempty"` // sorted ascending, bounded to one search page
}

// Confidence tiers for comp statistics, by sample size.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ProductResult is a Product plus its comp statistics and the financial
// projection derived from them. Queried distinguishes measured products from
// ones skipped by the per-run query budget, which carry a defaulted recovery
// assumption instead of a measured median.
type ProductResult struct {
	Product

	Median    float64 `json:"median"`
	Mean      float64 `json:"mean"`
	P25       float64 `json:"p25"`
	P75       float64 `json:"p75"`
	SoldCount int     `json:"sold_count"`

	Confidence       string  `json:"confidence"`
	RecoveryPct      float64 `json:"recovery_pct"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
	EstimatedProfit  float64 `json:"estimated_profit"`
	Routable         bool    `json:"routable"`
	Queried          bool    `json:"queried"`
}

// CategoryAggregate rolls ProductResults up by manifest category.
type CategoryAggregate struct {
	Category         string  `json:"category"`
	Items            int     `json:"items"`
	RetailTotal      float64 `json:"retail_total"`
	CostTotal        float64 `json:"cost_total"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
	EstimatedProfit  float64 `json:"estimated_profit"`
	WeightedRecovery float64 `json:"weighted_recovery"` // estimated revenue / retail total
}

// ChannelSummary totals one routing bucket (marketplace or wholesale).
type ChannelSummary struct {
	Products         int     `json:"products"`
	Items            int     `json:"items"`
	RetailTotal      float64 `json:"retail_total"`
	CostTotal        float64 `json:"cost_total"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
	EstimatedProfit  float64 `json:"estimated_profit"`
	WeightedRecovery float64 `json:"weighted_recovery,omitempty"`
}

// ChannelTotals compares the routed (hybrid) strategy against the two pure
// strategies: everything sold at marketplace pricing, or everything moved
// wholesale at a fixed recovery rate.
type ChannelTotals struct {
	Marketplace    ChannelSummary `json:"marketplace"`
	Wholesale      ChannelSummary `json:"wholesale"`
	AllMarketplace float64        `json:"all_marketplace_revenue"`
	AllWholesale   float64        `json:"all_wholesale_revenue"`
}

// Report is the engine's full output for one batch run.
type Report struct {
	RunID          string              `json:"run_id"`
	GeneratedAt    time.Time           `json:"generated_at"`
	Products       []ProductResult     `json:"products"`
	Categories     []CategoryAggregate `json:"categories"`
	Channels       ChannelTotals       `json:"channels"`
	ProductCount   int                 `json:"product_count"`
	QueriesIssued  int                 `json:"queries_issued"`
	ElapsedMillis  int64               `json:"elapsed_ms"`
	Degraded       bool                `json:"degraded"`        // true when comps were unavailable (auth failure)
	DegradedReason string              `json:"degraded_reason,omitempty"`
}
