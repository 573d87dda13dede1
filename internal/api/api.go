package api

import (
	"net/http"
	"sync"

	"recovery-engine/internal/catalog"
	"recovery-engine/internal/engine"
	"recovery-engine/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIHandler struct {
	engine *engine.Engine
	store  *catalog.Store
	log    *logger.Logger

	runMu   sync.Mutex
	running bool
}

func SetupRoutes(r *gin.RouterGroup, eng *engine.Engine, store *catalog.Store, log *logger.Logger) *APIHandler {
	handler := &APIHandler{
		engine: eng,
		store:  store,
		log:    log,
	}

	recovery := r.Group("/recovery")
	{
		recovery.POST("/run", handler.RunBatch)
		recovery.GET("/report", handler.GetReport)
	}

	manifest := r.Group("/manifest")
	{
		manifest.GET("/summary", handler.GetManifestSummary)
	}

	return handler
}

// RunBatch executes a full recovery batch and returns the report. Only one
// batch runs at a time; the external search service would throttle two
// interleaved runs anyway.
func (h *APIHandler) RunBatch(c *gin.Context) {
	h.runMu.Lock()
	if h.running {
		h.runMu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "a batch run is already in progress"})
		return
	}
	h.running = true
	h.runMu.Unlock()

	defer func() {
		h.runMu.Lock()
		h.running = false
		h.runMu.Unlock()
	}()

	report, err := h.engine.Run(c.Request.Context())
	if err != nil {
		h.log.Error("batch run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReport returns the most recent batch report.
func (h *APIHandler) GetReport(c *gin.Context) {
	report := h.engine.LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no batch has been run yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetManifestSummary returns manifest-wide totals for the dashboard header.
func (h *APIHandler) GetManifestSummary(c *gin.Context) {
	summary, err := h.store.Summarize(c.Request.Context())
	if err != nil {
		h.log.Error("manifest summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
