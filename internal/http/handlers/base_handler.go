// README: Base handler utilities (JSON helpers, error mapping, caller identity).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/modules/dispatch"
	"fieldmatch/internal/modules/performance"
	"fieldmatch/internal/modules/route"
	"fieldmatch/internal/types"
)

// callerHeader identifies the contractor on owner-scoped operations.
// Authentication itself happens at the gateway in front of this service.
const callerHeader = "X-Contractor-ID"

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func callerID(c *gin.Context) types.ID {
	return types.ID(c.GetHeader(callerHeader))
}

// writeServiceError maps module sentinel errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dispatch.ErrBadCoordinates),
		errors.Is(err, area.ErrBadRequest),
		errors.Is(err, area.ErrInvalidGeometry),
		errors.Is(err, area.ErrBadPriority),
		errors.Is(err, coverage.ErrBadRequest),
		errors.Is(err, route.ErrBadRequest),
		errors.Is(err, performance.ErrInvalidPeriod):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, area.ErrNotFound),
		errors.Is(err, coverage.ErrNotFound),
		errors.Is(err, route.ErrNotFound),
		errors.Is(err, performance.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, area.ErrNotOwner):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, area.ErrNameTaken),
		errors.Is(err, coverage.ErrOutcomeRecorded):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
