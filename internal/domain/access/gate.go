package access

import (
	"context"
	"fmt"

	"garden-ai/internal/domain/users"
	"garden-ai/internal/metrics"
)

// Gate decides whether a user may use the assistant. It reads the store on
// every call; entitlement can change at any moment through a webhook.
type Gate struct {
	store users.Store
}

func NewGate(store users.Store) *Gate {
	return &Gate{store: store}
}

// Check returns users.ErrNotFound (wrapped) when the user record is gone.
func (g *Gate) Check(ctx context.Context, userID string) (Decision, error) {
	user, err := g.store.FindByID(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("entitlement for %s: %w", userID, err)
	}
	d := Decide(user.SubscriptionStatus)
	if d.Allowed {
		metrics.EntitlementChecksTotal.WithLabelValues("allow").Inc()
	} else {
		metrics.EntitlementChecksTotal.WithLabelValues(string(d.Reason)).Inc()
	}
	return d, nil
}

// Decide maps a stored status to a decision: allowed iff active.
func Decide(status users.SubscriptionStatus) Decision {
	switch status {
	case users.StatusActive:
		return Decision{Allowed: true}
	case users.StatusNone, "":
		return Decision{Reason: ReasonNeverSubscribed}
	default:
		return Decision{Reason: ReasonLapsed}
	}
}
