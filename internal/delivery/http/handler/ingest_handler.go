package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coffeeisafruit/jv-matcher/internal/ingest"
	"github.com/coffeeisafruit/jv-matcher/internal/logger"
)

// IngestHandler exposes the ingestion-triggered Entity Resolution step
// (§4.1, §6) over HTTP for callers that stage candidate records out of
// band (a directory import job, a transcript pipeline) and then trigger
// resolution explicitly.
type IngestHandler struct {
	runner *ingest.Runner
	log    logger.Logger
}

func NewIngestHandler(runner *ingest.Runner, log logger.Logger) *IngestHandler {
	return &IngestHandler{runner: runner, log: log}
}

// Resolve handles POST /v1/ingest/resolve.
func (h *IngestHandler) Resolve(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("candidate record resolution failed", nil)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "resolution failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}
