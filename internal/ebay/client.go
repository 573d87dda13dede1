package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"recovery-engine/internal/comps"
	"recovery-engine/internal/logger"
	"recovery-engine/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// searchPageSize bounds a sold-listings query to one page of the most
	// recent sales.
	searchPageSize = 50

	itemSalesPath = "/buy/marketplace_insights/v1_beta/item_sales/search"

	// Condition tiers accepted as comps: new, open box, used.
	conditionFilter = "conditionIds:{1000|1500|3000}"
)

var nonDigits = regexp.MustCompile(`\D`)

// ValidUPC strips non-digit characters and accepts only standard 12 or
// 13-digit product codes.
func ValidUPC(raw string) (string, bool) {
	clean := nonDigits.ReplaceAllString(raw, "")
	if len(clean) == 12 || len(clean) == 13 {
		return clean, true
	}
	return "", false
}

// Client queries the sold-listings search with caching, backoff on
// throttling, and per-query degradation: a search that fails after all
// retries yields a zero-sample result instead of an error, so one bad
// product never aborts a batch.
type Client struct {
	api             *resty.Client
	tokens          *TokenSource
	cache           *comps.Cache
	policy          RetryPolicy
	includeShipping bool
	log             *logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(baseURL string, tokens *TokenSource, cache *comps.Cache, policy RetryPolicy, includeShipping bool, log *logger.Logger) *Client {
	api := resty.New()
	api.SetBaseURL(baseURL)
	api.SetTimeout(30 * time.Second)

	return &Client{
		api:             api,
		tokens:          tokens,
		cache:           cache,
		policy:          policy,
		includeShipping: includeShipping,
		log:             log,
		sleep:           sleepCtx,
	}
}

// SearchSold returns comp statistics for one product. The only error it can
// return is a credential failure (ErrMissingCredentials or *AuthError);
// every other failure degrades to an empty result after retries.
func (c *Client) SearchSold(ctx context.Context, name, upc string) (models.CompResult, error) {
	key := comps.Key(upc, name)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return models.CompResult{}, err
	}

	query := name
	if clean, ok := ValidUPC(upc); ok {
		query = clean + " " + name
	}

	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.policy.Backoff(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}

		prices, err := c.fetchPrices(ctx, token, query)
		if err == nil {
			result := comps.ComputeStats(prices)
			c.cache.Put(key, result)
			return result, nil
		}
		lastErr = err
	}

	c.log.Warn("sold-listings search degraded to empty result",
		zap.String("query", query),
		zap.Int("attempts", c.policy.MaxAttempts),
		zap.Error(lastErr))
	return models.CompResult{}, nil
}

// fetchPrices issues one search request and extracts positive sale prices in
// the target currency from the response page.
func (c *Client) fetchPrices(ctx context.Context, token, query string) ([]float64, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParams(map[string]string{
			"q":      query,
			"limit":  strconv.Itoa(searchPageSize),
			"sort":   "-lastSoldDate",
			"filter": "priceCurrency:USD," + conditionFilter,
		}).
		Get(itemSalesPath)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("search throttled with status 429")
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode())
	}

	var parsed itemSalesResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}

	prices := make([]float64, 0, len(parsed.ItemSales))
	for _, sale := range parsed.ItemSales {
		if sale.LastSoldPrice.Currency != "" && sale.LastSoldPrice.Currency != "USD" {
			continue
		}
		price, err := strconv.ParseFloat(sale.LastSoldPrice.Value, 64)
		if err != nil || price <= 0 {
			continue
		}
		if c.includeShipping && len(sale.ShippingOptions) > 0 {
			if shipping, err := strconv.ParseFloat(sale.ShippingOptions[0].ShippingCost.Value, 64); err == nil && shipping > 0 {
				price += shipping
			}
		}
		prices = append(prices, price)
	}

	return prices, nil
}

// SetSleepFunc overrides the backoff wait. Used in tests.
func (c *Client) SetSleepFunc(sleep func(ctx context.Context, d time.Duration) error) {
	c.sleep = sleep
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
