package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/debt-engine/debt"
)

func TestScenarios_DefinitionsMatchPortfolios(t *testing.T) {
	for _, s := range scenarios {
		portfolio, ok := scenarioDebts(s.ID)
		require.True(t, ok, s.ID)
		assert.Len(t, portfolio, s.DebtCount, s.ID)
		for _, in := range portfolio {
			assert.NoError(t, in.Validate(), "%s/%s", s.ID, in.Name)
		}
	}
}

func TestScenario_LoadReplacesCallersDebts(t *testing.T) {
	s := newTestServer(t)
	s.createDebt(t, 1, visaBody())
	s.createDebt(t, 2, visaBody())

	// WHEN: Owner 1 loads the household portfolio
	rec := s.do(t, 1, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "household"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Owner 1 has exactly the four scenario debts
	debts := decode[[]DebtDTO](t, s.do(t, 1, http.MethodGet, "/api/debts", nil))
	require.Len(t, debts, 4)
	assert.Equal(t, "TD Visa", debts[0].Name)
	require.NotNil(t, debts[0].LinkedStatementBank)
	assert.Equal(t, "TD", *debts[0].LinkedStatementBank)

	// AND: Owner 2 is untouched
	assert.Len(t, decode[[]DebtDTO](t, s.do(t, 2, http.MethodGet, "/api/debts", nil)), 1)

	current := decode[*ScenarioDTO](t, s.do(t, 1, http.MethodGet, "/api/scenarios/current", nil))
	require.NotNil(t, current)
	assert.Equal(t, "household", current.ID)
	assert.Nil(t, decode[*ScenarioDTO](t, s.do(t, 2, http.MethodGet, "/api/scenarios/current", nil)))

	// Reloading a different scenario replaces again
	s.do(t, 1, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "single-card"})
	assert.Len(t, decode[[]DebtDTO](t, s.do(t, 1, http.MethodGet, "/api/debts", nil)), 1)
}

func TestScenario_UnknownIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, 1, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "lottery-win"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_List(t *testing.T) {
	s := newTestServer(t)
	list := decode[[]ScenarioDTO](t, s.do(t, 1, http.MethodGet, "/api/scenarios", nil))
	assert.Len(t, list, len(scenarios))
}

func TestScenario_InterestTrapHitsCap(t *testing.T) {
	s := newTestServer(t)
	s.do(t, 1, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "interest-trap"})

	resp := decode[PayoffDTO](t, s.do(t, 1, http.MethodGet, "/api/debts/payoff", nil))
	assert.Nil(t, resp.TotalMonths)
	assert.Nil(t, resp.DebtFreeDate)
	require.Len(t, resp.MonthlyProjection, 600)
	last := resp.MonthlyProjection[len(resp.MonthlyProjection)-1]
	assert.True(t, last.TotalBalance.GreaterThan(debt.MustParse("500.00")))
}

func TestScenario_RateVsSize_AvalanchePaysCardFirst(t *testing.T) {
	s := newTestServer(t)
	s.do(t, 1, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "rate-vs-size"})

	resp := decode[PayoffDTO](t, s.do(t, 1, http.MethodGet, "/api/debts/payoff?strategy=avalanche", nil))
	require.Len(t, resp.PayoffOrder, 2)
	assert.Equal(t, "Store Card", resp.PayoffOrder[0].Name)
	require.NotNil(t, resp.PayoffOrder[0].MonthsToPayoff)
	assert.Equal(t, 12, *resp.PayoffOrder[0].MonthsToPayoff)
	require.NotNil(t, resp.TotalMonths)
	assert.Equal(t, 33, *resp.TotalMonths)
}
