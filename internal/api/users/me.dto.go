package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Status       string           `json:"status"` // none|active|past_due|cancelled|...
	HasCustomer  bool             `json:"has_customer"`
	Subscription *SubscriptionDTO `json:"subscription"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type SubscriptionDTO struct {
	StripeSubscriptionID string `json:"stripe_subscription_id"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	Allowed      bool     `json:"allowed"`
	Reason       string   `json:"reason,omitempty"` // never_subscribed|lapsed
	Capabilities []string `json:"capabilities"`
}
