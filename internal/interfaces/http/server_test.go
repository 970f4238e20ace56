package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtlab/capmatch/internal/commentary"
	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/metrics"
	"github.com/courtlab/capmatch/internal/persistence"
	"github.com/courtlab/capmatch/internal/score/composite"
)

func testCohort(t *testing.T) (*composite.Engine, []player.Record) {
	t.Helper()
	engine := composite.NewEngine(scoring.Default().TradeValue)
	ratio := func(v float64) *float64 { return &v }
	players := engine.Calculate([]player.Record{
		{Name: "Star", Team: "AAA", Age: 26, SalaryM: 40, ValueScoreAdj: 95, ContractValueRatio: ratio(1.2), FitVersatility: 80, SalarySurplusM: 8},
		{Name: "Bargain", Team: "BBB", Age: 23, SalaryM: 5, ValueScoreAdj: 70, ContractValueRatio: ratio(4.0), FitVersatility: 60, SalarySurplusM: 25},
		{Name: "Anchor", Team: "AAA", Age: 33, SalaryM: 45, ValueScoreAdj: 40, ContractValueRatio: ratio(0.4), FitVersatility: 30, SalarySurplusM: -20},
	})
	return engine, players
}

func testServer(t *testing.T) *Server {
	t.Helper()
	engine, players := testCohort(t)
	h := NewHandlers(players, engine,
		commentary.NewGenerator(commentary.NewMemoryCache()),
		"abc123def456", metrics.New(), zerolog.Nop())
	return NewServer(DefaultServerConfig(), h, metrics.New(), zerolog.Nop())
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, testServer(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["players"])
	assert.Equal(t, "abc123def456", body["config_hash"])
}

func TestPlayersLimit(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/players?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var players []player.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 2)
	assert.GreaterOrEqual(t, players[0].TradeValue, players[1].TradeValue)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/players?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparePlayers(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/players/compare", map[string]any{
		"players": []string{"Anchor", "Star"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var players []player.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 2)
	assert.Equal(t, "Star", players[0].Name, "sorted by trade value")

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/players/compare", map[string]any{"players": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateTrade(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/trade/simulate", map[string]any{
		"team_a_gives": []string{"Star", "Ghost"},
		"team_b_gives": []string{"Anchor"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp simulateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A:Ghost|Star__B:Anchor", resp.TradeSignature)
	assert.Equal(t, []string{"Ghost"}, resp.DroppedA, "unknown names surfaced")
	assert.True(t, resp.SalaryMatch)
	assert.NotEmpty(t, resp.Explain)
	require.NotNil(t, resp.Commentary)
	assert.Equal(t, resp.Verdict, resp.Commentary.Verdict)
}

func TestSimulateTradeWithPayrollsRunsCBA(t *testing.T) {
	srv := testServer(t)
	payrollA, payrollB := 210.0, 150.0
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/trade/simulate", map[string]any{
		"team_a_gives":     []string{"Star"},
		"team_b_gives":     []string{"Bargain"},
		"rule":             "cba_v1",
		"team_a":           "AAA",
		"team_b":           "BBB",
		"team_a_payroll_m": payrollA,
		"team_b_payroll_m": payrollB,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp simulateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.CBADecision)
	assert.False(t, resp.CBADecision.TeamB.OK, "below-tax team cannot absorb a max salary for a minimum")
}

type recordingTradeRepo struct {
	inserted []persistence.SimulatedTrade
}

func (r *recordingTradeRepo) Insert(ctx context.Context, trade persistence.SimulatedTrade) (int64, error) {
	r.inserted = append(r.inserted, trade)
	return int64(len(r.inserted)), nil
}

func (r *recordingTradeRepo) ListBySignature(ctx context.Context, signature string, limit int) ([]persistence.SimulatedTrade, error) {
	return nil, nil
}

func TestSimulateTradePersistsAndCountsCache(t *testing.T) {
	engine, players := testCohort(t)
	m := metrics.New()
	repo := &recordingTradeRepo{}
	h := NewHandlers(players, engine,
		commentary.NewGenerator(commentary.NewMemoryCache()),
		"abc123def456", m, zerolog.Nop()).WithTradeRepo(repo)
	srv := NewServer(DefaultServerConfig(), h, m, zerolog.Nop())

	body := map[string]any{
		"team_a_gives": []string{"Star"},
		"team_b_gives": []string{"Anchor"},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/trade/simulate", body)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/trade/simulate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, repo.inserted, 2, "every simulation is recorded")
	stored := repo.inserted[0]
	assert.Equal(t, "A:Star__B:Anchor", stored.TradeSignature)
	assert.Equal(t, "simple_125", stored.RuleVersion)
	assert.Equal(t, "abc123def456", stored.ConfigHash)
	assert.NotEmpty(t, stored.Verdict)
	assert.NotEmpty(t, stored.ResultJSON)

	var roundTrip composite.TradeResult
	require.NoError(t, json.Unmarshal(stored.ResultJSON, &roundTrip))
	assert.Equal(t, stored.Verdict, roundTrip.Verdict)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommentaryCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommentaryCache.WithLabelValues("hit")), "repeat request served from cache")
}

func TestSimulateTradeValidation(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/trade/simulate", map[string]any{
		"team_a_gives": []string{},
		"team_b_gives": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/trade/simulate", map[string]any{
		"team_a_gives": []string{"Star"},
		"team_b_gives": []string{"Anchor"},
		"rule":         "not_a_rule",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateCBA(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/cba/evaluate", map[string]any{
		"team_a": map[string]any{"team_code": "OKC", "payroll_m": 150, "outgoing_salary_m": 0, "outgoing_players": 0},
		"team_b": map[string]any{"team_code": "BOS", "payroll_m": 210, "outgoing_salary_m": 20, "outgoing_players": 1},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	teamA := body["team_a"].(map[string]any)
	assert.Equal(t, false, teamA["ok"], "zero outgoing cannot take salary back")
}

func TestNotFound(t *testing.T) {
	rec := doJSON(t, testServer(t), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
