package plans

import (
	"context"
	"net/http"

	"garden-ai/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
)

// PriceGetter fetches a single Stripe price.
type PriceGetter interface {
	Get(id string, params *stripe.PriceParams) (*stripe.Price, error)
}

type Handler struct {
	catalog *plans.Catalog
	prices  PriceGetter
	log     zerolog.Logger
}

func NewHandler(catalog *plans.Catalog, prices PriceGetter, log zerolog.Logger) *Handler {
	return &Handler{catalog: catalog, prices: prices, log: log}
}

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.All())
}

// PriceCheck is the result of comparing one catalog plan with Stripe.
type PriceCheck struct {
	PlanID        string  `json:"plan_id"`
	StripePriceID string  `json:"stripe_price_id"`
	OK            bool    `json:"ok"`
	Problem       string  `json:"problem,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	UnitAmount    float64 `json:"unit_amount,omitempty"`
	Interval      string  `json:"interval,omitempty"`
}

// CheckPrices verifies every configured price exists in Stripe, is active,
// recurring and billed on the interval the catalog advertises.
func (h *Handler) CheckPrices(c *gin.Context) {
	checks := make([]PriceCheck, 0)
	healthy := true
	for _, p := range h.catalog.All() {
		chk := h.check(c.Request.Context(), p)
		if !chk.OK {
			healthy = false
			h.log.Warn().Str("plan_id", p.ID).Str("price_id", p.StripePriceID).Str("problem", chk.Problem).Msg("plan price mismatch")
		}
		checks = append(checks, chk)
	}
	c.JSON(http.StatusOK, gin.H{"ok": healthy, "plans": checks})
}

func (h *Handler) check(ctx context.Context, p plans.Plan) PriceCheck {
	chk := PriceCheck{PlanID: p.ID, StripePriceID: p.StripePriceID}

	params := &stripe.PriceParams{}
	params.Context = ctx
	pr, err := h.prices.Get(p.StripePriceID, params)
	if err != nil {
		chk.Problem = "price not found in Stripe"
		return chk
	}

	chk.Currency = string(pr.Currency)
	chk.UnitAmount = float64(pr.UnitAmount) / 100.0
	if pr.Recurring != nil {
		chk.Interval = string(pr.Recurring.Interval)
	}

	switch {
	case !pr.Active:
		chk.Problem = "price is archived"
	case pr.Recurring == nil:
		chk.Problem = "price is not recurring"
	case p.Interval != "" && chk.Interval != p.Interval:
		chk.Problem = "interval differs from catalog"
	default:
		chk.OK = true
	}
	return chk
}
