package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// OrderMeta carries per-order metadata from orders.json: the order date, the
// totals used for COGS allocation, and the pallet-to-brands mapping.
type OrderMeta struct {
	Date         string
	TotalCost    float64
	TotalMSRP    float64
	TotalItems   int
	PalletBrands map[string]string
}

type ordersFile struct {
	Orders []struct {
		OrderID string `json:"order_id"`
		Date    string `json:"date"`
		Items   []struct {
			Title     string   `json:"title"`
			Price     float64  `json:"price"`
			MSRP      float64  `json:"msrp"`
			ItemCount int      `json:"item_count"`
			PalletIDs []string `json:"pallet_ids"`
		} `json:"items"`
	} `json:"orders"`
}

// LoadOrders reads orders.json and returns metadata keyed by order ID. A
// missing file yields an empty map, not an error: manifests can still sync
// without COGS allocation.
func LoadOrders(path string) (map[string]OrderMeta, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]OrderMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read orders file: %w", err)
	}

	var parsed ordersFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse orders file: %w", err)
	}

	orders := make(map[string]OrderMeta, len(parsed.Orders))
	for _, order := range parsed.Orders {
		if order.OrderID == "" {
			continue
		}

		meta := OrderMeta{
			Date:         order.Date,
			PalletBrands: make(map[string]string),
		}
		for _, item := range order.Items {
			meta.TotalCost += item.Price
			meta.TotalMSRP += item.MSRP
			meta.TotalItems += item.ItemCount

			brands := brandsFromTitle(item.Title)
			for _, palletID := range item.PalletIDs {
				meta.PalletBrands[palletID] = brands
			}
		}
		orders[order.OrderID] = meta
	}

	return orders, nil
}

// brandsFromTitle extracts the brand list from a listing title shaped like
// "Vacuums & Floorcare - iRobot, BISSELL, Shark - Orig. Retail $28,292".
func brandsFromTitle(title string) string {
	parts := strings.Split(title, " - ")
	if len(parts) >= 3 {
		return parts[1]
	}
	return ""
}
