package engine

import (
	"context"
	"sync"
	"time"

	"recovery-engine/internal/logger"
	"recovery-engine/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Searcher is the sold-listings comp source. The only error it may return is
// a credential failure, which flips the whole run into degraded mode.
type Searcher interface {
	SearchSold(ctx context.Context, name, upc string) (models.CompResult, error)
}

// Catalog supplies the read-only product snapshot for one run.
type Catalog interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// ProgressEvent describes one processed product, for live dashboards.
type ProgressEvent struct {
	Index       int     `json:"index"`
	Total       int     `json:"total"`
	Name        string  `json:"name"`
	Queried     bool    `json:"queried"`
	RecoveryPct float64 `json:"recovery_pct"`
	Routable    bool    `json:"routable"`
}

// ProgressFunc receives per-product progress events during a run.
type ProgressFunc func(ProgressEvent)

// Engine drives one batch: catalog snapshot, sequential rate-limited comp
// searches, estimation, routing, and aggregation. Searches are deliberately
// sequential with a fixed inter-call delay to stay under the external
// service's request-rate ceiling.
type Engine struct {
	catalog      Catalog
	search       Searcher
	policy       Policy
	requestDelay time.Duration
	queryLimit   int
	log          *logger.Logger
	progress     ProgressFunc

	sleep func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	lastReport *models.Report
}

func New(catalog Catalog, search Searcher, policy Policy, requestDelay time.Duration, queryLimit int, log *logger.Logger) *Engine {
	return &Engine{
		catalog:      catalog,
		search:       search,
		policy:       policy,
		requestDelay: requestDelay,
		queryLimit:   queryLimit,
		log:          log,
		sleep:        sleepCtx,
	}
}

// SetProgressFunc registers a sink for per-product progress events.
func (e *Engine) SetProgressFunc(fn ProgressFunc) {
	e.progress = fn
}

// SetSleepFunc overrides the inter-call delay wait. Used in tests.
func (e *Engine) SetSleepFunc(sleep func(ctx context.Context, d time.Duration) error) {
	e.sleep = sleep
}

// Run executes one batch. Per-product search failures degrade to defaulted
// entries; a credential failure keeps the catalog-derived aggregates but
// zeroes every comp field and flags the report as degraded. Cancelling ctx
// retains already-computed results and defaults the remainder.
func (e *Engine) Run(ctx context.Context) (*models.Report, error) {
	start := time.Now()

	products, err := e.catalog.Products(ctx)
	if err != nil {
		return nil, err
	}

	e.log.Info("starting recovery batch",
		zap.Int("products", len(products)),
		zap.Int("query_limit", e.queryLimit))

	results := make([]models.ProductResult, 0, len(products))
	queries := 0
	degraded := false
	degradedReason := ""

	for i, p := range products {
		var r models.ProductResult

		switch {
		case degraded:
			r = EstimateZeroed(p)
		case ctx.Err() != nil:
			r = EstimateDefaulted(p, e.policy)
		case e.queryLimit > 0 && queries >= e.queryLimit:
			r = EstimateDefaulted(p, e.policy)
		default:
			if queries > 0 {
				if err := e.sleep(ctx, e.requestDelay); err != nil {
					r = EstimateDefaulted(p, e.policy)
					break
				}
			}
			comp, err := e.search.SearchSold(ctx, p.Name, p.UPC)
			if err != nil {
				// No token, no comps. Keep the manifest-derived
				// aggregates and zero the rest of the run.
				degraded = true
				degradedReason = err.Error()
				e.log.Error("comp search unavailable, run degraded", zap.Error(err))
				r = EstimateZeroed(p)
				break
			}
			queries++
			r = Estimate(p, comp, e.policy)
		}

		results = append(results, r)

		if e.progress != nil {
			e.progress(ProgressEvent{
				Index:       i + 1,
				Total:       len(products),
				Name:        p.Name,
				Queried:     r.Queried,
				RecoveryPct: r.RecoveryPct,
				Routable:    r.Routable,
			})
		}
	}

	categories, channels := Aggregate(results, e.policy)

	report := &models.Report{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now(),
		Products:       results,
		Categories:     categories,
		Channels:       channels,
		ProductCount:   len(products),
		QueriesIssued:  queries,
		ElapsedMillis:  time.Since(start).Milliseconds(),
		Degraded:       degraded,
		DegradedReason: degradedReason,
	}

	e.mu.Lock()
	e.lastReport = report
	e.mu.Unlock()

	e.log.Info("recovery batch finished",
		zap.String("run_id", report.RunID),
		zap.Int("queries", queries),
		zap.Bool("degraded", degraded),
		zap.Int64("elapsed_ms", report.ElapsedMillis))

	return report, nil
}

// LastReport returns the most recent run's report, if any.
func (e *Engine) LastReport() *models.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastReport
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
