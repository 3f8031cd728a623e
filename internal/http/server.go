// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fieldmatch/internal/http/handlers"
	"fieldmatch/internal/http/middleware"
	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/modules/coverage"
	"fieldmatch/internal/modules/dispatch"
	"fieldmatch/internal/modules/performance"
	"fieldmatch/internal/modules/route"
)

type ServerDeps struct {
	Dispatch    *dispatch.Service
	Area        *area.Service
	Coverage    *coverage.Service
	Performance *performance.Service
	Route       *route.Service
	Log         *logrus.Logger
}

func NewRouter(deps ServerDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	dispatchHandler := handlers.NewDispatchHandler(deps.Dispatch)
	r.POST("/api/dispatch/query", dispatchHandler.Query)

	areaHandler := handlers.NewAreaHandler(deps.Area)
	r.POST("/api/areas", areaHandler.Create)
	r.GET("/api/areas/:id", areaHandler.Get)
	r.PATCH("/api/areas/:id", areaHandler.Update)
	r.DELETE("/api/areas/:id", areaHandler.Deactivate)
	r.GET("/api/contractors/:id/areas", areaHandler.ListByOwner)
	r.POST("/api/areas/:id/landmarks", areaHandler.AddLandmark)
	r.GET("/api/areas/:id/landmarks", areaHandler.ListLandmarks)

	coverageHandler := handlers.NewCoverageHandler(deps.Coverage)
	r.GET("/api/coverage/:id", coverageHandler.Get)
	r.POST("/api/coverage/:id/outcome", coverageHandler.RecordOutcome)

	perfHandler := handlers.NewPerformanceHandler(deps.Performance)
	r.POST("/api/performance/aggregate", perfHandler.Aggregate)
	r.GET("/api/areas/:id/performance", perfHandler.ListForArea)
	r.POST("/api/areas/:id/satisfaction", perfHandler.SetSatisfaction)

	routeHandler := handlers.NewRouteHandler(deps.Route)
	r.POST("/api/routes", routeHandler.Create)
	r.GET("/api/routes/:id", routeHandler.Get)
	r.POST("/api/routes/:id/stops", routeHandler.AddStop)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
