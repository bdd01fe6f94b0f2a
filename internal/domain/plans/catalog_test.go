package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Plan{
		{ID: PlanBloom, Name: "Bloom", StripePriceID: "price_bloom", Interval: "month"},
		{ID: PlanFullBloom, Name: "Full Bloom", StripePriceID: "price_full", Interval: "year"},
	}, PlanBloom, 7)
	require.NoError(t, err)
	return c
}

func TestCatalogLookup(t *testing.T) {
	c := testCatalog(t)

	p, err := c.Lookup(" Bloom ")
	require.NoError(t, err)
	assert.Equal(t, "price_bloom", p.StripePriceID)
	assert.Equal(t, int64(7), p.TrialDays)

	_, err = c.Lookup("sprout")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = c.Lookup("")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCatalogTrialDays(t *testing.T) {
	c := testCatalog(t)

	days, err := c.TrialDays(PlanBloom)
	require.NoError(t, err)
	assert.Equal(t, int64(7), days)

	_, err = c.TrialDays(PlanFullBloom)
	assert.ErrorIs(t, err, ErrTrialNotEligible)
}

func TestCatalogTrialsDisabled(t *testing.T) {
	c, err := NewCatalog([]Plan{{ID: PlanBloom, StripePriceID: "price_bloom"}}, "", 0)
	require.NoError(t, err)

	_, err = c.TrialDays(PlanBloom)
	assert.ErrorIs(t, err, ErrTrialNotEligible)
}

func TestNewCatalogRejectsBadInput(t *testing.T) {
	_, err := NewCatalog([]Plan{{ID: PlanBloom}}, "", 0)
	assert.Error(t, err)

	_, err = NewCatalog([]Plan{
		{ID: PlanBloom, StripePriceID: "a"},
		{ID: "BLOOM", StripePriceID: "b"},
	}, "", 0)
	assert.Error(t, err)

	_, err = NewCatalog([]Plan{{ID: PlanBloom, StripePriceID: "a"}}, "sprout", 7)
	assert.Error(t, err)
}

func TestCatalogAllIsSorted(t *testing.T) {
	all := testCatalog(t).All()
	require.Len(t, all, 2)
	assert.Equal(t, PlanBloom, all[0].ID)
	assert.Equal(t, PlanFullBloom, all[1].ID)
}
