package engine

import (
	"sort"

	"recovery-engine/internal/models"
)

// UncategorizedLabel buckets products whose manifest row carried no category.
const UncategorizedLabel = "Uncategorized"

// Aggregate recomputes the category and channel rollups from scratch over
// the current product-result set.
func Aggregate(results []models.ProductResult, policy Policy) ([]models.CategoryAggregate, models.ChannelTotals) {
	byCategory := make(map[string]*models.CategoryAggregate)
	var totals models.ChannelTotals

	for _, r := range results {
		category := r.Category
		if category == "" {
			category = UncategorizedLabel
		}

		agg, ok := byCategory[category]
		if !ok {
			agg = &models.CategoryAggregate{Category: category}
			byCategory[category] = agg
		}

		retail := r.UnitRetail * float64(r.Quantity)
		cost := r.UnitCost * float64(r.Quantity)

		agg.Items += r.Quantity
		agg.RetailTotal = round2(agg.RetailTotal + retail)
		agg.CostTotal = round2(agg.CostTotal + cost)
		agg.EstimatedRevenue = round2(agg.EstimatedRevenue + r.EstimatedRevenue)
		agg.EstimatedProfit = round2(agg.EstimatedProfit + r.EstimatedProfit)

		bucket := &totals.Wholesale
		if r.Routable {
			bucket = &totals.Marketplace
		}
		bucket.Products++
		bucket.Items += r.Quantity
		bucket.RetailTotal = round2(bucket.RetailTotal + retail)
		bucket.CostTotal = round2(bucket.CostTotal + cost)
		bucket.EstimatedRevenue = round2(bucket.EstimatedRevenue + r.EstimatedRevenue)
		bucket.EstimatedProfit = round2(bucket.EstimatedProfit + r.EstimatedProfit)

		// Counterfactual strategies over the full set.
		totals.AllMarketplace = round2(totals.AllMarketplace + r.EstimatedRevenue)
		totals.AllWholesale = round2(totals.AllWholesale + retail*policy.WholesaleRecoveryRate)
	}

	if totals.Marketplace.RetailTotal > 0 {
		totals.Marketplace.WeightedRecovery = totals.Marketplace.EstimatedRevenue / totals.Marketplace.RetailTotal
	}

	categories := make([]models.CategoryAggregate, 0, len(byCategory))
	for _, agg := range byCategory {
		if agg.RetailTotal > 0 {
			agg.WeightedRecovery = agg.EstimatedRevenue / agg.RetailTotal
		}
		categories = append(categories, *agg)
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].RetailTotal != categories[j].RetailTotal {
			return categories[i].RetailTotal > categories[j].RetailTotal
		}
		return categories[i].Category < categories[j].Category
	})

	return categories, totals
}
