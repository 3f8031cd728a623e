// README: Coverage outcome handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/types"
)

type CoverageHandler struct {
	coverage *coverage.Service
}

func NewCoverageHandler(svc *coverage.Service) *CoverageHandler {
	return &CoverageHandler{coverage: svc}
}

type outcomeRequest struct {
	WasAccepted   bool    `json:"was_accepted"`
	DeclineReason *string `json:"decline_reason,omitempty"`
}

// RecordOutcome sets the accept/decline result of a match attempt. Allowed
// exactly once per event; a repeat returns 409.
func (h *CoverageHandler) RecordOutcome(c *gin.Context) {
	var req outcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.coverage.RecordOutcome(c.Request.Context(), types.ID(c.Param("id")), req.WasAccepted, req.DeclineReason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

func (h *CoverageHandler) Get(c *gin.Context) {
	e, err := h.coverage.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
