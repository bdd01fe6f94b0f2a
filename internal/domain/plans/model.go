package plans

type Plan struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StripePriceID string `json:"stripe_price_id"`
	Interval      string `json:"interval"` // "month" | "year"
	TrialDays     int64  `json:"trial_days,omitempty"`
}

// Plan ids offered by the pricing page.
const (
	PlanBloom     = "bloom"
	PlanFullBloom = "full_bloom"
)
