package ebay

// Wire types for the Marketplace Insights item-sales search. Monetary values
// arrive as strings.

type moneyValue struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type shippingOption struct {
	ShippingCost moneyValue `json:"shippingCost"`
}

type itemSale struct {
	Title           string           `json:"title"`
	Condition       string           `json:"condition"`
	ConditionID     string           `json:"conditionId"`
	LastSoldDate    string           `json:"lastSoldDate"`
	LastSoldPrice   moneyValue       `json:"lastSoldPrice"`
	ShippingOptions []shippingOption `json:"shippingOptions"`
}

type itemSalesResponse struct {
	Total     int        `json:"total"`
	ItemSales []itemSale `json:"itemSales"`
}
