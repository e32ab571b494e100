package api

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// impactSummary is the dashboard payload: the persisted state plus the
// derived score and tier.
type impactSummary struct {
	Pillars          domain.PillarScores `json:"pillars"`
	ImpactIQ         int                 `json:"impact_iq"`
	Tier             domain.Tier         `json:"tier"`
	TotalCarbonGrams float64             `json:"total_carbon_saved_grams"`
	TotalPoints      float64             `json:"total_points"`
	GreenCredits     float64             `json:"green_credits"`
	Purchases        int                 `json:"purchases"`
	Transits         int                 `json:"transits"`
	Verifications    int                 `json:"verifications"`
}

func summarize(state domain.ImpactState) impactSummary {
	return impactSummary{
		Pillars:          state.Pillars,
		ImpactIQ:         state.IQ(),
		Tier:             state.Tier(),
		TotalCarbonGrams: state.TotalCarbonSavedGrams,
		TotalPoints:      state.TotalPoints,
		GreenCredits:     state.GreenCredits,
		Purchases:        state.PurchaseCount,
		Transits:         state.TransitCount,
		Verifications:    state.VerificationCount,
	}
}

func (s *Server) handleImpactSummary(w http.ResponseWriter, r *http.Request) {
	state, err := s.scores.State()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summarize(state))
}

func (s *Server) handleImpactEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > domain.HistoryLimit {
		limit = domain.HistoryLimit
	}

	state, err := s.scores.State()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	events := state.History
	if len(events) > limit {
		events = events[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// ─── Verification ───────────────────────────────────────────────────────────

type verifyRequest struct {
	Action      string `json:"action"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action == "" || req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, "action and image_base64 are required")
		return
	}

	// Tolerate data-URL prefixes from camera bridges
	raw := req.ImageBase64
	if i := strings.Index(raw, ","); i >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+1:]
	}
	img, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_base64 is not valid base64")
		return
	}

	out, err := s.pipeline.Verify(r.Context(), img, domain.ActionTag(req.Action), nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := map[string]interface{}{
		"result":   out.Result,
		"metadata": out.Metadata,
	}
	if out.Event != nil {
		resp["event"] = out.Event
	}
	if out.State != nil {
		resp["summary"] = summarize(*out.State)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─── Route comparison ───────────────────────────────────────────────────────

type compareRequest struct {
	From domain.Position `json:"from"`
	To   domain.Position `json:"to"`
}

func (s *Server) handleRouteCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.From == req.To {
		writeError(w, http.StatusBadRequest, "from and to must differ")
		return
	}

	cmp, err := s.planner.Compare(r.Context(), req.From, req.To)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// ─── Activity sessions ──────────────────────────────────────────────────────

type sessionStartRequest struct {
	Activity    string `json:"activity"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req sessionStartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.sessions.Start(domain.ActivityKind(req.Activity), req.Origin, req.Destination)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	session, active := s.sessions.Active()
	if !active {
		writeJSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"active": true, "session": session})
}

func (s *Server) handleSessionStop(w http.ResponseWriter, r *http.Request) {
	ev, state, err := s.sessions.Stop()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"event":   ev,
		"summary": summarize(state),
	})
}

// ─── Live trips ─────────────────────────────────────────────────────────────

type tripStartRequest struct {
	Mode string `json:"mode"`
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleTripStart(w http.ResponseWriter, r *http.Request) {
	var req tripStartRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.live.Start(r.Context(), domain.TransportMode(req.Mode), req.From, req.To); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "tracking"})
}

// handleTripFix accepts a pushed GPS fix for clients that report positions
// over HTTP instead of a native watch.
func (s *Server) handleTripFix(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if err := decodeBody(r, &pos); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.live.OnFix(pos)
	distance, co2, running := s.live.Progress()
	if !running {
		writeError(w, http.StatusNotFound, domain.ErrNoActiveTrip.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"distance_km": distance,
		"co2_grams":   co2,
	})
}

func (s *Server) handleTripStatus(w http.ResponseWriter, r *http.Request) {
	distance, co2, running := s.live.Progress()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active":      running,
		"distance_km": distance,
		"co2_grams":   co2,
	})
}

func (s *Server) handleTripStop(w http.ResponseWriter, r *http.Request) {
	tl, state, err := s.live.Stop()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trip":    tl,
		"summary": summarize(state),
	})
}

func (s *Server) handleTripHistory(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.ListTrips(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trips": trips})
}

// ─── Rewards ────────────────────────────────────────────────────────────────

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.streaks.Current()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"streak":           streak,
		"bonus_multiplier": streak.BonusMultiplier(),
	})
}

func (s *Server) handleCoupons(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rewards.Catalog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"coupons": entries})
}

func (s *Server) handleCouponRedeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	coupon, err := s.rewards.Redeem(req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redeemed": coupon})
}

func (s *Server) handleHabitLog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tag string `json:"tag"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.rewards.LogHabit(domain.ActionTag(req.Tag)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Barcode == "" {
		writeError(w, http.StatusBadRequest, "barcode is required")
		return
	}
	if err := s.rewards.CheckScan(req.Barcode); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "allowed"})
}
