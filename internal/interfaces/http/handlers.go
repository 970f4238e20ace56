package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/courtlab/capmatch/internal/commentary"
	"github.com/courtlab/capmatch/internal/domain/cba"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/metrics"
	"github.com/courtlab/capmatch/internal/persistence"
	"github.com/courtlab/capmatch/internal/report"
	"github.com/courtlab/capmatch/internal/score/composite"
)

// Handlers serves the API from an in-memory scored cohort. The cohort is
// loaded once at startup; this service evaluates, it does not ingest.
type Handlers struct {
	players    []player.Record
	engine     *composite.Engine
	generator  *commentary.Generator
	trades     persistence.TradeRepo
	configHash string
	metrics    *metrics.Metrics
	log        zerolog.Logger
	startedAt  time.Time
}

// NewHandlers builds the handler set over a scored cohort.
func NewHandlers(players []player.Record, engine *composite.Engine, gen *commentary.Generator, configHash string, m *metrics.Metrics, log zerolog.Logger) *Handlers {
	return &Handlers{
		players:    players,
		engine:     engine,
		generator:  gen,
		configHash: configHash,
		metrics:    m,
		log:        log,
		startedAt:  time.Now(),
	}
}

// WithTradeRepo enables simulation persistence. Nil leaves it off.
func (h *Handlers) WithTradeRepo(repo persistence.TradeRepo) *Handlers {
	h.trades = repo
	return h
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports liveness and the loaded cohort size.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"players":     len(h.players),
		"config_hash": h.configHash,
		"uptime_s":    int(time.Since(h.startedAt).Seconds()),
	})
}

// Players returns the ranked cohort, optionally limited.
func (h *Handlers) Players(w http.ResponseWriter, r *http.Request) {
	limit := len(h.players)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n < limit {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, h.players[:limit])
}

type compareRequest struct {
	Players []string `json:"players"`
}

// ComparePlayers returns the named players ranked by trade value.
func (h *Handlers) ComparePlayers(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Players) == 0 {
		writeError(w, http.StatusBadRequest, "players list is required")
		return
	}
	writeJSON(w, http.StatusOK, h.engine.ComparePlayers(h.players, req.Players))
}

type simulateRequest struct {
	TeamAGives []string `json:"team_a_gives"`
	TeamBGives []string `json:"team_b_gives"`
	Rule       string   `json:"rule,omitempty"`
	PayrollAM  *float64 `json:"team_a_payroll_m,omitempty"`
	PayrollBM  *float64 `json:"team_b_payroll_m,omitempty"`
	TeamA      string   `json:"team_a,omitempty"`
	TeamB      string   `json:"team_b,omitempty"`
}

type simulateResponse struct {
	composite.TradeResult
	TradeSignature string             `json:"trade_signature"`
	ConfigHash     string             `json:"scoring_config_hash"`
	Pills          report.MetricPills `json:"metric_pills"`
	Explain        []string           `json:"explain"`
	Commentary     *commentary.Entry  `json:"commentary,omitempty"`
	DroppedA       []string           `json:"dropped_a,omitempty"`
	DroppedB       []string           `json:"dropped_b,omitempty"`
}

// SimulateTrade runs a simulation. Payroll figures, when provided for both
// teams, enable the full CBA evaluation; otherwise the selected legacy rule
// decides salary match alone.
func (h *Handlers) SimulateTrade(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.TeamAGives) == 0 && len(req.TeamBGives) == 0 {
		writeError(w, http.StatusBadRequest, "at least one side must send players")
		return
	}

	opts := composite.SimulateOptions{Rule: req.Rule}
	if req.PayrollAM != nil && req.PayrollBM != nil {
		ctxA := cba.BuildContext(req.TeamA, *req.PayrollAM)
		ctxB := cba.BuildContext(req.TeamB, *req.PayrollBM)
		opts.ContextA = &ctxA
		opts.ContextB = &ctxB
	}

	res, err := h.engine.SimulateTrade(h.players, req.TeamAGives, req.TeamBGives, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.metrics.ObserveSimulation(res.RuleVersion, res.SalaryMatch)

	resp := simulateResponse{
		TradeResult:    res,
		TradeSignature: report.TradeSignature(req.TeamAGives, req.TeamBGives),
		ConfigHash:     h.configHash,
		Pills:          report.BuildMetricPills(res),
		Explain:        report.BuildExplainBullets(res),
		DroppedA:       missingNames(req.TeamAGives, res.TeamAPackage.Players),
		DroppedB:       missingNames(req.TeamBGives, res.TeamBPackage.Players),
	}

	if h.generator != nil {
		key := commentary.Key{
			RuleVersion:       res.RuleVersion,
			ScoringConfigHash: h.configHash,
			TradeSignature:    resp.TradeSignature,
		}
		entry, hit, err := h.generator.Commentary(r.Context(), key, res)
		switch {
		case err != nil:
			h.log.Warn().Err(err).Msg("commentary generation failed")
			h.metrics.CommentaryCache.WithLabelValues("error").Inc()
		case hit:
			h.metrics.CommentaryCache.WithLabelValues("hit").Inc()
			resp.Commentary = &entry
		default:
			h.metrics.CommentaryCache.WithLabelValues("miss").Inc()
			resp.Commentary = &entry
		}
	}

	h.persistSimulation(r, res, resp.TradeSignature)

	writeJSON(w, http.StatusOK, resp)
}

// persistSimulation records the evaluated trade for audit and backtesting.
// Storage failures are logged, never surfaced to the caller.
func (h *Handlers) persistSimulation(r *http.Request, res composite.TradeResult, signature string) {
	if h.trades == nil {
		return
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		h.log.Warn().Err(err).Msg("simulation result marshal failed")
		return
	}
	_, err = h.trades.Insert(r.Context(), persistence.SimulatedTrade{
		TradeSignature:  signature,
		RuleVersion:     res.RuleVersion,
		ConfigHash:      h.configHash,
		SalaryMatch:     res.SalaryMatch,
		SalaryDiffM:     res.SalaryDiffM,
		ValueDifference: res.ValueDifference,
		Verdict:         res.Verdict,
		ResultJSON:      resultJSON,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("trade_signature", signature).Msg("simulation persist failed")
	}
}

// missingNames reports requested names absent from the resolved package, so
// clients can surface silent drops.
func missingNames(requested, resolved []string) []string {
	have := make(map[string]bool, len(resolved))
	for _, n := range resolved {
		have[n] = true
	}
	var missing []string
	for _, n := range requested {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

type evaluateRequest struct {
	TeamA cbaSide `json:"team_a"`
	TeamB cbaSide `json:"team_b"`
}

type cbaSide struct {
	TeamCode        string  `json:"team_code"`
	PayrollM        float64 `json:"payroll_m"`
	OutgoingSalaryM float64 `json:"outgoing_salary_m"`
	OutgoingPlayers int     `json:"outgoing_players"`
}

// EvaluateCBA runs the rule engine directly on aggregate salary figures,
// no roster lookup involved.
func (h *Handlers) EvaluateCBA(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctxA := cba.BuildContext(req.TeamA.TeamCode, req.TeamA.PayrollM)
	ctxB := cba.BuildContext(req.TeamB.TeamCode, req.TeamB.PayrollM)

	decision := cba.EvaluateTrade(cba.SideInput{
		TeamCode:        req.TeamA.TeamCode,
		OutgoingSalaryM: req.TeamA.OutgoingSalaryM,
		IncomingSalaryM: req.TeamB.OutgoingSalaryM,
		OutgoingPlayers: req.TeamA.OutgoingPlayers,
		IncomingPlayers: req.TeamB.OutgoingPlayers,
	}, cba.SideInput{
		TeamCode:        req.TeamB.TeamCode,
		OutgoingSalaryM: req.TeamB.OutgoingSalaryM,
		IncomingSalaryM: req.TeamA.OutgoingSalaryM,
		OutgoingPlayers: req.TeamB.OutgoingPlayers,
		IncomingPlayers: req.TeamA.OutgoingPlayers,
	}, ctxA, ctxB)

	writeJSON(w, http.StatusOK, decision)
}

// NotFound is the JSON 404 handler.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
