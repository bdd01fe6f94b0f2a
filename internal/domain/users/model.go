package users

import "time"

type SubscriptionStatus string

// Known values. Any other provider status is stored as reported.
const (
	StatusNone      SubscriptionStatus = "none"
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Email     string `gorm:"not null;uniqueIndex:idx_users_email"`
	Name      string
	GoogleSub *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role      string  `gorm:"type:varchar(20);not null;default:'user'"`

	ExternalCustomerID     *string            `gorm:"column:external_customer_id;uniqueIndex:idx_users_external_customer_id"`
	ExternalSubscriptionID *string            `gorm:"column:external_subscription_id"`
	SubscriptionStatus     SubscriptionStatus `gorm:"column:subscription_status;type:varchar(32);not null;default:'none'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCustomer reports whether the user is already linked to a billing customer.
func (u *User) HasCustomer() bool {
	return u.ExternalCustomerID != nil && *u.ExternalCustomerID != ""
}
