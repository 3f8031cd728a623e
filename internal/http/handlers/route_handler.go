// README: Route capture handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldmatch/internal/modules/route"
	"fieldmatch/internal/types"
)

type RouteHandler struct {
	routes *route.Service
}

func NewRouteHandler(svc *route.Service) *RouteHandler {
	return &RouteHandler{routes: svc}
}

type createRouteRequest struct {
	Date time.Time `json:"date"`
}

func (h *RouteHandler) Create(c *gin.Context) {
	var req createRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.routes.Create(c.Request.Context(), callerID(c), req.Date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RouteHandler) Get(c *gin.Context) {
	r, err := h.routes.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type addStopRequest struct {
	JobID    *types.ID   `json:"job_id,omitempty"`
	Position types.Point `json:"position"`
}

func (h *RouteHandler) AddStop(c *gin.Context) {
	var req addStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.routes.AddStop(c.Request.Context(), types.ID(c.Param("id")), req.JobID, req.Position)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
