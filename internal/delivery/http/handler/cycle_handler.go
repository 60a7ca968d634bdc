package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coffeeisafruit/jv-matcher/internal/config"
	"github.com/coffeeisafruit/jv-matcher/internal/cycle"
	"github.com/coffeeisafruit/jv-matcher/internal/logger"
)

// CycleHandler exposes run_cycle/run_for_profile (§6) over HTTP.
type CycleHandler struct {
	runner *cycle.Runner
	log    logger.Logger
	cfg    config.MatchingConfig
}

func NewCycleHandler(runner *cycle.Runner, log logger.Logger) *CycleHandler {
	return &CycleHandler{runner: runner, log: log}
}

// WithMatchingConfig overrides the default MatchingConfig the handler passes
// to run_cycle/run_for_profile, returning the receiver for chaining.
func (h *CycleHandler) WithMatchingConfig(cfg config.MatchingConfig) *CycleHandler {
	h.cfg = cfg
	return h
}

// runCycleRequest's cycle_id is optional (§6: generated when the caller
// omits it), so the body itself may be empty; when a cycle_id is supplied,
// binding rejects blank or unreasonably long values.
type runCycleRequest struct {
	CycleID string `json:"cycle_id" binding:"omitempty,min=1,max=128"`
}

// RunCycle handles POST /v1/cycles.
func (h *CycleHandler) RunCycle(c *gin.Context) {
	var req runCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.CycleID == "" {
		req.CycleID = uuid.NewString()
	}

	report, err := h.runner.RunCycle(c.Request.Context(), req.CycleID, h.cfg)
	if err != nil {
		h.log.WithError(err).Error("run_cycle failed", map[string]interface{}{"cycle_id": req.CycleID})
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "cycle run failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// RefreshProfile handles POST /v1/profiles/:id/refresh.
func (h *CycleHandler) RefreshProfile(c *gin.Context) {
	profileID := c.Param("id")
	suggestions, err := h.runner.RunForProfile(c.Request.Context(), profileID, h.cfg)
	if err != nil {
		h.log.WithError(err).Error("run_for_profile failed", map[string]interface{}{"profile_id": profileID})
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "profile refresh failed"})
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
