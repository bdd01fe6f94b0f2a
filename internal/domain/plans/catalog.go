package plans

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownPlan       = errors.New("unknown plan")
	ErrTrialNotEligible  = errors.New("trial not available for this plan")
	errMissingPriceID    = errors.New("plan has no stripe price id")
	errDuplicatePlanID   = errors.New("duplicate plan id")
	errTrialPlanNotFound = errors.New("trial plan is not in the catalog")
)

// Catalog is the server-side allow-list of purchasable plans.
type Catalog struct {
	plans       map[string]Plan
	trialPlanID string
	trialDays   int64
}

// NewCatalog validates the plan list. trialPlanID may be empty to disable trials.
func NewCatalog(list []Plan, trialPlanID string, trialDays int64) (*Catalog, error) {
	c := &Catalog{plans: make(map[string]Plan, len(list))}
	for _, p := range list {
		id := normalizeID(p.ID)
		if strings.TrimSpace(p.StripePriceID) == "" {
			return nil, fmt.Errorf("plan %q: %w", id, errMissingPriceID)
		}
		if _, dup := c.plans[id]; dup {
			return nil, fmt.Errorf("plan %q: %w", id, errDuplicatePlanID)
		}
		p.ID = id
		c.plans[id] = p
	}

	trialPlanID = normalizeID(trialPlanID)
	if trialPlanID != "" && trialDays > 0 {
		p, ok := c.plans[trialPlanID]
		if !ok {
			return nil, fmt.Errorf("plan %q: %w", trialPlanID, errTrialPlanNotFound)
		}
		p.TrialDays = trialDays
		c.plans[trialPlanID] = p
		c.trialPlanID = trialPlanID
		c.trialDays = trialDays
	}
	return c, nil
}

func (c *Catalog) Lookup(id string) (Plan, error) {
	p, ok := c.plans[normalizeID(id)]
	if !ok {
		return Plan{}, fmt.Errorf("%q: %w", id, ErrUnknownPlan)
	}
	return p, nil
}

// TrialDays returns the trial length for planID, or ErrTrialNotEligible
// when planID is not the designated trial plan.
func (c *Catalog) TrialDays(planID string) (int64, error) {
	if c.trialPlanID == "" || normalizeID(planID) != c.trialPlanID {
		return 0, ErrTrialNotEligible
	}
	return c.trialDays, nil
}

// All returns the plans ordered by id.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
