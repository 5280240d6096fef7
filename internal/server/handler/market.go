package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/marketwatch/internal/domain"
	"github.com/alanyoungcy/marketwatch/internal/trade"
)

// LatestSource returns the most recent snapshot.
type LatestSource interface {
	Latest() (snap domain.MarketSnapshot, at time.Time, ok bool)
}

// MarketHandler serves the latest snapshot with trade figures for the
// active profile.
type MarketHandler struct {
	latest   LatestSource
	profiles ActiveProfile
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(latest LatestSource, profiles ActiveProfile) *MarketHandler {
	return &MarketHandler{latest: latest, profiles: profiles}
}

type tradeView struct {
	trade.Result
	RevenueText string `json:"revenueText"`
	CostText    string `json:"costOfSalesText"`
	ProfitText  string `json:"profitText"`
	MarginText  string `json:"marginText"`
	MarkupText  string `json:"markupText"`
	MeetsTarget bool   `json:"meetsThreshold"`
}

type latestResponse struct {
	Snapshot   domain.MarketSnapshot `json:"snapshot"`
	ReceivedAt string                `json:"receivedAt"`
	Profile    string                `json:"profile"`
	Trade      tradeView             `json:"trade"`
}

// GetLatest returns the latest snapshot, or 404 before the first one.
// GET /api/market/latest
func (h *MarketHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	snap, at, ok := h.latest.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no market data yet")
		return
	}

	p := h.profiles.Active()
	res := trade.CalculateSnapshot(snap, p)
	writeJSON(w, http.StatusOK, latestResponse{
		Snapshot:   snap,
		ReceivedAt: at.Format(time.RFC3339),
		Profile:    p.ProfileName,
		Trade: tradeView{
			Result:      res,
			RevenueText: trade.FormatISK(res.Revenue),
			CostText:    trade.FormatISK(res.CostOfSales),
			ProfitText:  trade.FormatISK(res.Profit),
			MarginText:  trade.FormatPercent(res.Margin),
			MarkupText:  trade.FormatPercent(res.Markup),
			MeetsTarget: res.MeetsThreshold(p),
		},
	})
}
