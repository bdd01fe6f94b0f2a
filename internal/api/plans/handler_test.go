package plans

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"garden-ai/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
)

type fakePrices map[string]*stripe.Price

func (f fakePrices) Get(id string, _ *stripe.PriceParams) (*stripe.Price, error) {
	p, ok := f[id]
	if !ok {
		return nil, errors.New("no such price")
	}
	return p, nil
}

func newRouter(t *testing.T, prices fakePrices) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := plans.NewCatalog([]plans.Plan{
		{ID: plans.PlanBloom, Name: "Bloom", StripePriceID: "price_bloom", Interval: "month"},
		{ID: plans.PlanFullBloom, Name: "Full Bloom", StripePriceID: "price_full", Interval: "year"},
	}, plans.PlanBloom, 7)
	require.NoError(t, err)

	h := NewHandler(catalog, prices, zerolog.Nop())
	r := gin.New()
	r.GET("/plans", h.ListPlans)
	r.GET("/admin/plans/check", h.CheckPrices)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListPlans(t *testing.T) {
	w := get(newRouter(t, nil), "/plans")
	require.Equal(t, http.StatusOK, w.Code)

	var got []plans.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "bloom", got[0].ID)
	assert.Equal(t, int64(7), got[0].TrialDays)
	assert.Zero(t, got[1].TrialDays)
}

func TestCheckPrices(t *testing.T) {
	prices := fakePrices{
		"price_bloom": {ID: "price_bloom", Active: true, Currency: "eur", UnitAmount: 499,
			Recurring: &stripe.PriceRecurring{Interval: "month"}},
		"price_full": {ID: "price_full", Active: true, Currency: "eur", UnitAmount: 4900,
			Recurring: &stripe.PriceRecurring{Interval: "month"}},
	}
	w := get(newRouter(t, prices), "/admin/plans/check")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK    bool         `json:"ok"`
		Plans []PriceCheck `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	require.Len(t, resp.Plans, 2)
	assert.True(t, resp.Plans[0].OK)
	assert.Equal(t, 4.99, resp.Plans[0].UnitAmount)
	assert.Equal(t, "interval differs from catalog", resp.Plans[1].Problem)
}

func TestCheckPricesMissing(t *testing.T) {
	w := get(newRouter(t, fakePrices{}), "/admin/plans/check")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "price not found in Stripe")
}
