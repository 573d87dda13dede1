package catalog

import (
	"context"
	"fmt"

	"recovery-engine/internal/models"

	"gorm.io/gorm"
)

// Store reads the manifest catalog. The engine treats the product list as a
// read-only snapshot for the duration of one run.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Products returns the aggregated catalog: manifest rows sharing the same
// UPC, name, category and unit retail collapse into one product with summed
// quantity and a quantity-weighted average acquisition cost.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product

	err := s.db.WithContext(ctx).
		Model(&models.ManifestItem{}).
		Select(`upc,
			product_name AS name,
			category,
			line_item_brands AS brand,
			unit_retail,
			SUM(quantity) AS quantity,
			CASE WHEN SUM(quantity) > 0
				THEN SUM(allocated_cogs_per_unit * quantity) / SUM(quantity)
				ELSE 0 END AS unit_cost`).
		Group("upc, product_name, category, line_item_brands, unit_retail").
		Order("unit_retail * quantity DESC").
		Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog snapshot: %w", err)
	}

	return products, nil
}

// Summary holds manifest-wide totals for the dashboard header.
type Summary struct {
	RowCount   int64   `json:"rows" gorm:"column:row_count"`
	Orders     int64   `json:"orders" gorm:"column:order_count"`
	TotalItems int64   `json:"total_items" gorm:"column:total_items"`
	TotalMSRP  float64 `json:"total_msrp" gorm:"column:total_msrp"`
	UniqueUPCs int64   `json:"unique_upcs" gorm:"column:unique_upcs"`
}

// Summarize computes manifest-wide totals across all synced orders.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	var out Summary

	err := s.db.WithContext(ctx).
		Model(&models.ManifestItem{}).
		Select(`COUNT(*) AS row_count,
			COUNT(DISTINCT order_id) AS order_count,
			COALESCE(SUM(quantity), 0) AS total_items,
			COALESCE(SUM(total_retail), 0) AS total_msrp,
			COUNT(DISTINCT CASE WHEN upc <> '' THEN upc END) AS unique_upcs`).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize manifests: %w", err)
	}

	return &out, nil
}
