// README: Dispatch query handler.
package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldmatch/internal/modules/dispatch"
	"fieldmatch/internal/types"
)

type DispatchHandler struct {
	dispatch *dispatch.Service
}

func NewDispatchHandler(svc *dispatch.Service) *DispatchHandler {
	return &DispatchHandler{dispatch: svc}
}

type queryRequest struct {
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	JobValue    *float64   `json:"job_value,omitempty"`
	IsEmergency bool       `json:"is_emergency,omitempty"`
	MaxResults  int        `json:"max_results,omitempty"`
}

type rankedMatchResponse struct {
	AreaID        types.ID  `json:"area_id"`
	ContractorID  types.ID  `json:"contractor_id"`
	DistanceKm    float64   `json:"distance_km"`
	PriorityLevel int       `json:"priority_level"`
	Quote         quoteView `json:"quote"`
}

type quoteView struct {
	BaseCharge     float64         `json:"base_charge"`
	DistanceCharge float64         `json:"distance_charge"`
	Surcharges     []surchargeView `json:"surcharges"`
	Total          float64         `json:"total"`
	Currency       string          `json:"currency"`
}

type surchargeView struct {
	Name   string  `json:"name"`
	Pct    float64 `json:"pct"`
	Amount float64 `json:"amount"`
}

// Query returns the ranked list of eligible contractors for a location.
// An empty list is a normal response, not an error.
func (h *DispatchHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	q := dispatch.Query{
		Location:    types.Point{Lat: req.Latitude, Lng: req.Longitude},
		RequestedAt: time.Now(),
		IsEmergency: req.IsEmergency,
		MaxResults:  req.MaxResults,
	}
	if req.RequestedAt != nil {
		q.RequestedAt = *req.RequestedAt
	}
	if req.JobValue != nil {
		m := types.MoneyFromFloat(*req.JobValue, types.DefaultCurrency)
		q.JobValue = &m
	}

	ranked, err := h.dispatch.Query(c.Request.Context(), q)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]rankedMatchResponse, len(ranked))
	for i, m := range ranked {
		out[i] = rankedMatchResponse{
			AreaID:        m.AreaID,
			ContractorID:  m.ContractorID,
			DistanceKm:    round2(m.DistanceKm),
			PriorityLevel: m.PriorityLevel,
			Quote: quoteView{
				BaseCharge:     round2(m.Quote.BaseCharge),
				DistanceCharge: round2(m.Quote.DistanceCharge),
				Surcharges:     surchargeViews(m),
				Total:          m.Quote.Total.Float64(),
				Currency:       m.Quote.Total.Currency,
			},
		}
	}
	c.JSON(http.StatusOK, gin.H{"matches": out})
}

func surchargeViews(m dispatch.RankedMatch) []surchargeView {
	views := make([]surchargeView, len(m.Quote.Surcharges))
	for i, s := range m.Quote.Surcharges {
		views[i] = surchargeView{Name: s.Name, Pct: s.Pct, Amount: round2(s.Amount)}
	}
	return views
}

// round2 is display rounding; engine internals keep full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
