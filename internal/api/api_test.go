package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recovery-engine/internal/engine"
	"recovery-engine/internal/logger"
	"recovery-engine/internal/models"

	"github.com/gin-gonic/gin"
)

type staticCatalog struct {
	products []models.Product
}

func (c *staticCatalog) Products(ctx context.Context) ([]models.Product, error) {
	return c.products, nil
}

type staticSearcher struct {
	comp models.CompResult
}

func (s *staticSearcher) SearchSold(ctx context.Context, name, upc string) (models.CompResult, error) {
	return s.comp, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := &staticCatalog{products: []models.Product{
		{Name: "Dyson V8", Category: "Vacuums", UnitRetail: 100, Quantity: 10, UnitCost: 20},
	}}
	search := &staticSearcher{comp: models.CompResult{Median: 70, SoldCount: 25}}

	policy := engine.Policy{FeeRate: 0.13, RecoveryThreshold: 0.60, DefaultRecoveryRate: 0.30, WholesaleRecoveryRate: 0.30}
	eng := engine.New(cat, search, policy, time.Millisecond, 0, logger.NewNop())
	eng.SetSleepFunc(func(ctx context.Context, d time.Duration) error { return nil })

	r := gin.New()
	SetupRoutes(r.Group("/api"), eng, nil, logger.NewNop())
	return r
}

func TestGetReportBeforeAnyRun(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recovery/report", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first run, got %d", w.Code)
	}
}

func TestRunBatchAndFetchReport(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recovery/run", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report models.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.ProductCount != 1 || report.QueriesIssued != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !report.Products[0].Routable {
		t.Fatalf("expected routable product in report")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recovery/report", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after run, got %d", w.Code)
	}
}
