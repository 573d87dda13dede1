package manifest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"recovery-engine/internal/models"

	"github.com/xuri/excelize/v2"
)

var nonDigits = regexp.MustCompile(`\D`)

// ParseFile parses one XLSX order manifest into manifest rows. The sheet
// layout varies between orders, so the header row is discovered by scanning
// for known column labels rather than assumed at a fixed offset.
func ParseFile(path, orderID string, meta OrderMeta) ([]models.ManifestItem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close()

	// COGS allocation ratio: what was paid for the order relative to its
	// stated retail value.
	cogsRatio := 0.0
	if meta.TotalMSRP > 0 {
		cogsRatio = meta.TotalCost / meta.TotalMSRP
	}

	var items []models.ManifestItem

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		headerIdx, cols := findHeader(rows)
		if cols == nil {
			continue
		}

		for _, row := range rows[headerIdx+1:] {
			item, ok := parseRow(row, cols, orderID, meta, cogsRatio)
			if ok {
				items = append(items, item)
			}
		}
	}

	return items, nil
}

// columnMap holds the resolved column index per field, -1 when absent.
type columnMap struct {
	listingID    int
	listingTitle int
	category     int
	productName  int
	upc          int
	asin         int
	quantity     int
	unitRetail   int
	totalRetail  int
}

func findHeader(rows [][]string) (int, *columnMap) {
	for i, row := range rows {
		cols := columnMap{listingID: -1, listingTitle: -1, category: -1, productName: -1,
			upc: -1, asin: -1, quantity: -1, unitRetail: -1, totalRetail: -1}
		matched := false

		for j, cell := range row {
			switch h := strings.ToLower(strings.TrimSpace(cell)); {
			case strings.Contains(h, "listing id"):
				cols.listingID = j
				matched = true
			case strings.Contains(h, "listing title"):
				cols.listingTitle = j
				matched = true
			case h == "category":
				cols.category = j
				matched = true
			case strings.Contains(h, "product name"):
				cols.productName = j
				matched = true
			case h == "upc":
				cols.upc = j
				matched = true
			case h == "asin":
				cols.asin = j
				matched = true
			case h == "quantity":
				cols.quantity = j
				matched = true
			case strings.Contains(h, "total orig"):
				cols.totalRetail = j
				matched = true
			case strings.Contains(h, "orig. retail"):
				cols.unitRetail = j
				matched = true
			}
		}

		if matched && cols.productName >= 0 {
			return i, &cols
		}
	}
	return 0, nil
}

func parseRow(row []string, cols *columnMap, orderID string, meta OrderMeta, cogsRatio float64) (models.ManifestItem, bool) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	productName := get(cols.productName)
	if productName == "" || strings.EqualFold(productName, "product name") {
		return models.ManifestItem{}, false
	}

	listingID := get(cols.listingID)
	quantity := parseInt(get(cols.quantity), 1)
	unitRetail := parseFloat(get(cols.unitRetail))
	totalRetail := parseFloat(get(cols.totalRetail))
	if totalRetail == 0 && unitRetail > 0 {
		totalRetail = unitRetail * float64(quantity)
	}

	return models.ManifestItem{
		OrderID:              orderID,
		ListingID:            listingID,
		ListingTitle:         get(cols.listingTitle),
		Category:             get(cols.category),
		ProductName:          productName,
		UPC:                  CleanUPC(get(cols.upc)),
		ASIN:                 get(cols.asin),
		Quantity:             quantity,
		UnitRetail:           unitRetail,
		TotalRetail:          totalRetail,
		OrderDate:            meta.Date,
		LineItemBrands:       meta.PalletBrands[listingID],
		AllocatedCOGSPerUnit: unitRetail * cogsRatio,
	}, true
}

// CleanUPC normalizes a raw UPC cell: trailing ".0" from numeric cells is
// dropped and non-digit characters are stripped. Whatever digits remain are
// kept even when the length is non-standard.
func CleanUPC(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), ".0")
	return nonDigits.ReplaceAllString(raw, "")
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return int(f)
	}
	return fallback
}

func parseFloat(s string) float64 {
	s = strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}
