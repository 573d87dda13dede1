package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"recovery-engine/internal/logger"
	"recovery-engine/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const manifestPrefix = "order_manifest_"

// SyncStats summarizes one sync pass.
type SyncStats struct {
	Files    int
	Rows     int
	Upserted int
	Errors   int
}

// SyncDir parses every order_manifest_*.xlsx in dir, cross-references
// orders.json metadata, and upserts the rows into manifest_items. A file
// that fails to parse is skipped, not fatal.
func SyncDir(db *gorm.DB, dir, ordersPath string, log *logger.Logger) (*SyncStats, error) {
	orders, err := LoadOrders(ordersPath)
	if err != nil {
		return nil, err
	}
	log.Info("loaded order metadata", zap.Int("orders", len(orders)))

	files, err := filepath.Glob(filepath.Join(dir, manifestPrefix+"*.xlsx"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan manifests dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no manifest files found in %s", dir)
	}

	stats := &SyncStats{Files: len(files)}

	for _, path := range files {
		orderID := orderIDFromFilename(path)
		meta := orders[orderID]

		items, err := ParseFile(path, orderID, meta)
		if err != nil {
			log.Warn("skipping unreadable manifest", zap.String("file", path), zap.Error(err))
			stats.Errors++
			continue
		}

		log.Info("parsed manifest",
			zap.String("order_id", orderID),
			zap.Int("rows", len(items)))
		stats.Rows += len(items)

		for _, item := range items {
			err := db.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "order_id"}, {Name: "listing_id"},
					{Name: "product_name"}, {Name: "upc"},
				},
				DoUpdates: clause.AssignmentColumns([]string{
					"listing_title", "category", "asin", "quantity",
					"unit_retail", "total_retail", "order_date",
					"line_item_brands", "allocated_cogs_per_unit",
				}),
			}).Create(&item).Error
			if err != nil {
				log.Warn("failed to upsert manifest row",
					zap.String("product", item.ProductName), zap.Error(err))
				stats.Errors++
				continue
			}
			stats.Upserted++
		}
	}

	return stats, nil
}

// orderIDFromFilename extracts the order ID from order_manifest_<id>.xlsx.
func orderIDFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimPrefix(name, manifestPrefix)
	return strings.TrimSuffix(name, ".xlsx")
}

// Verify re-reads the totals the way the dashboard will see them.
func Verify(db *gorm.DB) (rows int64, orders int64, err error) {
	if err = db.Model(&models.ManifestItem{}).Count(&rows).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&models.ManifestItem{}).Distinct("order_id").Count(&orders).Error; err != nil {
		return 0, 0, err
	}
	return rows, orders, nil
}
