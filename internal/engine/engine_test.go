package engine

import (
	"context"
	"testing"
	"time"

	"recovery-engine/internal/ebay"
	"recovery-engine/internal/logger"
	"recovery-engine/internal/models"
)

type fakeCatalog struct {
	products []models.Product
	err      error
}

func (f *fakeCatalog) Products(ctx context.Context) ([]models.Product, error) {
	return f.products, f.err
}

type fakeSearcher struct {
	comps  map[string]models.CompResult
	err    error
	calls  int
	onCall func(call int)
}

func (f *fakeSearcher) SearchSold(ctx context.Context, name, upc string) (models.CompResult, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	if f.err != nil {
		return models.CompResult{}, f.err
	}
	return f.comps[name], nil
}

func testProducts() []models.Product {
	return []models.Product{
		{Name: "Dyson V8", Category: "Vacuums", UPC: "012345678905", UnitRetail: 100, Quantity: 10, UnitCost: 20},
		{Name: "Instant Pot", Category: "Kitchen", UnitRetail: 80, Quantity: 5, UnitCost: 15},
		{Name: "Mystery Box", Category: "", UnitRetail: 40, Quantity: 2, UnitCost: 4},
	}
}

func newTestEngine(catalog Catalog, search Searcher, queryLimit int) *Engine {
	e := New(catalog, search, testPolicy, 300*time.Millisecond, queryLimit, logger.NewNop())
	e.SetSleepFunc(func(ctx context.Context, d time.Duration) error { return nil })
	return e
}

func TestRunFullBatch(t *testing.T) {
	search := &fakeSearcher{comps: map[string]models.CompResult{
		"Dyson V8":    {Median: 70, Mean: 70, P25: 60, P75: 80, SoldCount: 25},
		"Instant Pot": {Median: 30, Mean: 32, P25: 25, P75: 40, SoldCount: 8},
		"Mystery Box": {SoldCount: 0},
	}}
	eng := newTestEngine(&fakeCatalog{products: testProducts()}, search, 0)

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.RunID == "" {
		t.Fatalf("expected a run ID")
	}
	if report.ProductCount != 3 || report.QueriesIssued != 3 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if report.Degraded {
		t.Fatalf("run should not be degraded")
	}
	if len(report.Products) != 3 || len(report.Categories) != 3 {
		t.Fatalf("expected 3 products and 3 categories, got %d/%d", len(report.Products), len(report.Categories))
	}

	dyson := report.Products[0]
	if !dyson.Routable || dyson.RecoveryPct != 0.70 {
		t.Fatalf("expected Dyson routable at 0.70 recovery, got %+v", dyson)
	}

	if got := eng.LastReport(); got != report {
		t.Fatalf("LastReport should return the latest run")
	}
}

func TestRunRespectsQueryBudget(t *testing.T) {
	search := &fakeSearcher{comps: map[string]models.CompResult{
		"Dyson V8":    {Median: 70, SoldCount: 25},
		"Instant Pot": {Median: 30, SoldCount: 8},
	}}
	eng := newTestEngine(&fakeCatalog{products: testProducts()}, search, 2)

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.QueriesIssued != 2 || search.calls != 2 {
		t.Fatalf("expected exactly 2 queries, got %d (calls %d)", report.QueriesIssued, search.calls)
	}

	skipped := report.Products[2]
	if skipped.Queried {
		t.Fatalf("third product should be budget-skipped")
	}
	if skipped.RecoveryPct != testPolicy.DefaultRecoveryRate {
		t.Fatalf("expected default recovery %.2f, got %v", testPolicy.DefaultRecoveryRate, skipped.RecoveryPct)
	}
	if skipped.Routable {
		t.Fatalf("budget-skipped product must route wholesale")
	}
}

func TestRunDegradesOnAuthFailure(t *testing.T) {
	search := &fakeSearcher{err: &ebay.AuthError{StatusCode: 401, Body: "invalid_client"}}
	eng := newTestEngine(&fakeCatalog{products: testProducts()}, search, 0)

	report, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("degraded run must still return a report: %v", err)
	}

	if !report.Degraded || report.DegradedReason == "" {
		t.Fatalf("expected degraded report with a reason, got %+v", report)
	}
	if search.calls != 1 {
		t.Fatalf("no further searches after a credential failure, got %d calls", search.calls)
	}
	if report.QueriesIssued != 0 {
		t.Fatalf("failed search must not count as issued, got %d", report.QueriesIssued)
	}

	for _, r := range report.Products {
		if r.Median != 0 || r.EstimatedRevenue != 0 || r.Routable {
			t.Fatalf("expected zeroed comp fields in degraded mode, got %+v", r)
		}
	}

	// Manifest-derived aggregates survive.
	if len(report.Categories) != 3 {
		t.Fatalf("catalog aggregates must survive degraded mode, got %d categories", len(report.Categories))
	}
	var retail float64
	for _, c := range report.Categories {
		retail += c.RetailTotal
	}
	if retail == 0 {
		t.Fatalf("expected retail totals from the catalog in degraded mode")
	}
}

func TestRunCancellationDefaultsRemainder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	search := &fakeSearcher{
		comps: map[string]models.CompResult{
			"Dyson V8": {Median: 70, SoldCount: 25},
		},
		onCall: func(call int) {
			if call == 1 {
				cancel()
			}
		},
	}
	eng := newTestEngine(&fakeCatalog{products: testProducts()}, search, 0)

	report, err := eng.Run(ctx)
	if err != nil {
		t.Fatalf("cancelled run must retain computed results: %v", err)
	}

	if !report.Products[0].Queried {
		t.Fatalf("first product was measured before cancellation")
	}
	for _, r := range report.Products[1:] {
		if r.Queried {
			t.Fatalf("remainder must fall back to the defaulted path, got %+v", r)
		}
		if r.RecoveryPct != testPolicy.DefaultRecoveryRate {
			t.Fatalf("expected default recovery on cancelled remainder, got %v", r.RecoveryPct)
		}
	}
	if len(report.Products) != 3 {
		t.Fatalf("no product may be dropped on cancellation, got %d", len(report.Products))
	}
}

func TestRunEmitsProgressEvents(t *testing.T) {
	search := &fakeSearcher{comps: map[string]models.CompResult{}}
	eng := newTestEngine(&fakeCatalog{products: testProducts()}, search, 0)

	var events []ProgressEvent
	eng.SetProgressFunc(func(e ProgressEvent) { events = append(events, e) })

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected one event per product, got %d", len(events))
	}
	for i, e := range events {
		if e.Index != i+1 || e.Total != 3 {
			t.Fatalf("unexpected event %d: %+v", i, e)
		}
	}
}

func TestRunPausesBetweenQueries(t *testing.T) {
	search := &fakeSearcher{comps: map[string]models.CompResult{}}
	eng := New(&fakeCatalog{products: testProducts()}, search, testPolicy, 300*time.Millisecond, 0, logger.NewNop())

	var waits []time.Duration
	eng.SetSleepFunc(func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	})

	if _, err := eng.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No pause before the first query, one before each subsequent one.
	if len(waits) != 2 {
		t.Fatalf("expected 2 inter-call delays for 3 queries, got %d", len(waits))
	}
	for _, d := range waits {
		if d != 300*time.Millisecond {
			t.Fatalf("expected fixed 300ms delay, got %v", d)
		}
	}
}
