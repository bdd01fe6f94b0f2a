package users

import (
	"garden-ai/internal/domain/access"
	"garden-ai/internal/domain/users"
	"garden-ai/internal/infra/stripe"
)

func BuildMeResponse(u users.User, d access.Decision) MeResponse {
	return MeResponse{
		User: UserDTO{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		},
		Billing: BillingDTO{
			Status:       stripe.DisplayStatus(u.SubscriptionStatus),
			HasCustomer:  u.HasCustomer(),
			Subscription: BuildSubscriptionDTO(u),
			UpdatedAt:    u.UpdatedAt,
		},
		Access: AccessDTO{
			Allowed:      d.Allowed,
			Reason:       string(d.Reason),
			Capabilities: access.CapabilitiesFor(d),
		},
	}
}

func BuildSubscriptionDTO(u users.User) *SubscriptionDTO {
	if u.ExternalSubscriptionID == nil || *u.ExternalSubscriptionID == "" {
		return nil
	}
	return &SubscriptionDTO{StripeSubscriptionID: *u.ExternalSubscriptionID}
}
