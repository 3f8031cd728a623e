// README: Performance rollup handlers (manual trigger + listing).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldmatch/internal/modules/performance"
	"fieldmatch/internal/types"
)

type PerformanceHandler struct {
	performance *performance.Service
}

func NewPerformanceHandler(svc *performance.Service) *PerformanceHandler {
	return &PerformanceHandler{performance: svc}
}

type aggregateRequest struct {
	ServiceAreaID types.ID  `json:"service_area_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
}

// Aggregate triggers a rollup for one (area, period). Re-running an
// already-aggregated period is a normal overwrite, not an error.
func (h *PerformanceHandler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.performance.Aggregate(c.Request.Context(), req.ServiceAreaID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PerformanceHandler) ListForArea(c *gin.Context) {
	rollups, err := h.performance.ListForArea(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"performance": rollups})
}

type satisfactionRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Score       float64   `json:"score"`
}

// SetSatisfaction stores the externally supplied customer satisfaction
// score on an existing rollup.
func (h *PerformanceHandler) SetSatisfaction(c *gin.Context) {
	var req satisfactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.performance.SetCustomerSatisfaction(c.Request.Context(),
		types.ID(c.Param("id")), req.PeriodStart, req.PeriodEnd, req.Score)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
