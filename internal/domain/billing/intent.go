package billing

import "garden-ai/internal/domain/users"

type Action string

const (
	ActionActivate   Action = "activate"
	ActionSync       Action = "sync"
	ActionDeactivate Action = "deactivate"
	ActionNoop       Action = "noop"
)

// Intent is what a verified provider event asks the reconciler to do.
// The concrete types below are the only implementations.
type Intent interface {
	Action() Action
}

// Activate links a user to a paid checkout.
type Activate struct {
	UserID         string
	CustomerID     string
	SubscriptionID string
	PlanID         string
}

// Sync adopts the provider's view of a subscription.
type Sync struct {
	CustomerID     string
	SubscriptionID string
	Status         users.SubscriptionStatus
}

// Deactivate forces the terminal cancelled state.
type Deactivate struct {
	CustomerID     string
	SubscriptionID string
}

// Noop is any event that needs no state change.
type Noop struct {
	EventType string
	Reason    string
}

func (Activate) Action() Action   { return ActionActivate }
func (Sync) Action() Action       { return ActionSync }
func (Deactivate) Action() Action { return ActionDeactivate }
func (Noop) Action() Action       { return ActionNoop }
