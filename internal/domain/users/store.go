package users

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// BillingChanges is the set of columns the reconciler is allowed to write.
// A nil CustomerID leaves the column untouched; a nil SubscriptionID clears it.
type BillingChanges struct {
	CustomerID     *string
	SubscriptionID *string
	Status         SubscriptionStatus
	UpdatedAt      time.Time
}

// Store is the persistence port for users. Lookups return ErrNotFound
// (possibly wrapped) when no record matches; any other error is a fault.
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByCustomerID(ctx context.Context, customerID string) (*User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	LinkGoogle(ctx context.Context, id, sub string) error
	ApplyBilling(ctx context.Context, id string, changes BillingChanges) error
	List(ctx context.Context) ([]User, error)
}
