// README: Service area CRUD handlers (owner-scoped writes).
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldmatch/internal/modules/area"
	"fieldmatch/internal/types"
)

type AreaHandler struct {
	areas *area.Service
}

func NewAreaHandler(svc *area.Service) *AreaHandler {
	return &AreaHandler{areas: svc}
}

type geometryPayload struct {
	Kind        string        `json:"kind"`
	Center      *types.Point  `json:"center,omitempty"`
	RadiusKm    float64       `json:"radius_km,omitempty"`
	Polygon     []types.Point `json:"polygon,omitempty"`
	PostalCodes []string      `json:"postal_codes,omitempty"`
	Cities      []string      `json:"cities,omitempty"`
}

func (g geometryPayload) toGeometry() area.Geometry {
	return area.Geometry{
		Kind:        area.GeometryKind(g.Kind),
		Center:      g.Center,
		RadiusKm:    g.RadiusKm,
		Polygon:     g.Polygon,
		PostalCodes: g.PostalCodes,
		Cities:      g.Cities,
	}
}

type createAreaRequest struct {
	Name     string          `json:"name"`
	Geometry geometryPayload `json:"geometry"`

	BaseTravelCharge float64 `json:"base_travel_charge"`
	PerKmRate        float64 `json:"per_km_rate"`
	MinimumJobValue  float64 `json:"minimum_job_value"`
	Currency         string  `json:"currency"`

	PriorityLevel int  `json:"priority_level"`
	IsPrimary     bool `json:"is_primary"`

	MaxDistanceKm     *float64 `json:"max_distance_km,omitempty"`
	ResponseTimeHours float64  `json:"response_time_hours"`

	WeekendSurchargePct   float64 `json:"weekend_surcharge_pct"`
	EveningSurchargePct   float64 `json:"evening_surcharge_pct"`
	EmergencyAvailable    bool    `json:"emergency_available"`
	EmergencySurchargePct float64 `json:"emergency_surcharge_pct"`

	PreferredDays  []int           `json:"preferred_days"`
	PreferredHours area.HoursRange `json:"preferred_hours"`
}

func (h *AreaHandler) Create(c *gin.Context) {
	owner := callerID(c)
	if owner == "" {
		writeError(c, http.StatusBadRequest, "missing "+callerHeader+" header")
		return
	}
	var req createAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.areas.Create(c.Request.Context(), area.CreateCommand{
		OwnerID:               owner,
		Name:                  req.Name,
		Geometry:              req.Geometry.toGeometry(),
		BaseTravelCharge:      types.MoneyFromFloat(req.BaseTravelCharge, req.Currency),
		PerKmRate:             types.MoneyFromFloat(req.PerKmRate, req.Currency),
		MinimumJobValue:       types.MoneyFromFloat(req.MinimumJobValue, req.Currency),
		PriorityLevel:         req.PriorityLevel,
		IsPrimary:             req.IsPrimary,
		MaxDistanceKm:         req.MaxDistanceKm,
		ResponseTimeHours:     req.ResponseTimeHours,
		WeekendSurchargePct:   req.WeekendSurchargePct,
		EveningSurchargePct:   req.EveningSurchargePct,
		EmergencyAvailable:    req.EmergencyAvailable,
		EmergencySurchargePct: req.EmergencySurchargePct,
		PreferredDays:         toWeekdays(req.PreferredDays),
		PreferredHours:        req.PreferredHours,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, areaView(a))
}

func (h *AreaHandler) Get(c *gin.Context) {
	a, err := h.areas.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, areaView(a))
}

func (h *AreaHandler) ListByOwner(c *gin.Context) {
	areas, err := h.areas.ListByOwner(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]gin.H, len(areas))
	for i, a := range areas {
		out[i] = areaView(a)
	}
	c.JSON(http.StatusOK, gin.H{"areas": out})
}

type updateAreaRequest struct {
	Name     *string          `json:"name,omitempty"`
	Geometry *geometryPayload `json:"geometry,omitempty"`

	PriorityLevel *int  `json:"priority_level,omitempty"`
	IsPrimary     *bool `json:"is_primary,omitempty"`

	MaxDistanceKm     *float64 `json:"max_distance_km,omitempty"`
	ResponseTimeHours *float64 `json:"response_time_hours,omitempty"`

	WeekendSurchargePct   *float64 `json:"weekend_surcharge_pct,omitempty"`
	EveningSurchargePct   *float64 `json:"evening_surcharge_pct,omitempty"`
	EmergencyAvailable    *bool    `json:"emergency_available,omitempty"`
	EmergencySurchargePct *float64 `json:"emergency_surcharge_pct,omitempty"`
}

func (h *AreaHandler) Update(c *gin.Context) {
	var req updateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	cmd := area.UpdateCommand{
		AreaID:                types.ID(c.Param("id")),
		OwnerID:               callerID(c),
		Name:                  req.Name,
		PriorityLevel:         req.PriorityLevel,
		IsPrimary:             req.IsPrimary,
		MaxDistanceKm:         req.MaxDistanceKm,
		ResponseTimeHours:     req.ResponseTimeHours,
		WeekendSurchargePct:   req.WeekendSurchargePct,
		EveningSurchargePct:   req.EveningSurchargePct,
		EmergencyAvailable:    req.EmergencyAvailable,
		EmergencySurchargePct: req.EmergencySurchargePct,
	}
	if req.Geometry != nil {
		g := req.Geometry.toGeometry()
		cmd.Geometry = &g
	}
	a, err := h.areas.Update(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, areaView(a))
}

// Deactivate replaces deletion; areas stay referenced by coverage events.
func (h *AreaHandler) Deactivate(c *gin.Context) {
	err := h.areas.Deactivate(c.Request.Context(), types.ID(c.Param("id")), callerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

type landmarkRequest struct {
	Name         string      `json:"name"`
	Kind         string      `json:"kind"`
	Position     types.Point `json:"position"`
	RadiusMeters float64     `json:"radius_meters"`
	Notes        string      `json:"notes"`
}

func (h *AreaHandler) AddLandmark(c *gin.Context) {
	var req landmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	lm, err := h.areas.AddLandmark(c.Request.Context(), area.LandmarkCommand{
		AreaID:       types.ID(c.Param("id")),
		OwnerID:      callerID(c),
		Name:         req.Name,
		Kind:         area.LandmarkKind(req.Kind),
		Position:     req.Position,
		RadiusMeters: req.RadiusMeters,
		Notes:        req.Notes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lm)
}

func (h *AreaHandler) ListLandmarks(c *gin.Context) {
	landmarks, err := h.areas.ListLandmarks(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"landmarks": landmarks})
}

func areaView(a *area.ServiceArea) gin.H {
	return gin.H{
		"id":                  a.ID,
		"owner_id":            a.OwnerID,
		"name":                a.Name,
		"geometry":            a.Geometry,
		"base_travel_charge":  a.BaseTravelCharge.Float64(),
		"per_km_rate":         a.PerKmRate.Float64(),
		"minimum_job_value":   a.MinimumJobValue.Float64(),
		"currency":            a.BaseTravelCharge.Currency,
		"priority_level":      a.PriorityLevel,
		"is_primary":          a.IsPrimary,
		"is_active":           a.IsActive,
		"max_distance_km":     a.MaxDistanceKm,
		"response_time_hours": a.ResponseTimeHours,
		"emergency_available": a.EmergencyAvailable,
		"created_at":          a.CreatedAt.Format(time.RFC3339),
	}
}

func toWeekdays(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}
