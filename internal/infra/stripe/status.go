package stripe

import (
	"strings"

	"garden-ai/internal/domain/users"
)

// AdoptStatus turns a provider subscription status into the stored value.
// Statuses are kept verbatim apart from two aliases: "canceled" shares the
// terminal "cancelled" spelling and "trialing" counts as active.
func AdoptStatus(s string) users.SubscriptionStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return users.StatusNone
	case "canceled", "cancelled":
		return users.StatusCancelled
	case "trialing":
		return users.StatusActive
	default:
		return users.SubscriptionStatus(s)
	}
}

// DisplayStatus folds stored statuses into the small set the UI renders.
func DisplayStatus(s users.SubscriptionStatus) string {
	switch strings.TrimSpace(string(s)) {
	case "", string(users.StatusNone):
		return "none"
	case string(users.StatusActive):
		return "active"
	case string(users.StatusPastDue), "unpaid":
		return "past_due"
	case string(users.StatusCancelled), "incomplete_expired":
		return "cancelled"
	default:
		return strings.TrimSpace(string(s))
	}
}
