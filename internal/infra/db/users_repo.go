package db

import (
	"context"
	"errors"
	"fmt"

	"garden-ai/internal/domain/users"

	"gorm.io/gorm"
)

// UserRepo is the gorm-backed users.Store.
type UserRepo struct {
	db *gorm.DB
}

var _ users.Store = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*users.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByCustomerID(ctx context.Context, customerID string) (*users.User, error) {
	return r.first(ctx, "external_customer_id = ?", customerID)
}

func (r *UserRepo) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return r.first(ctx, "google_sub = ?", sub)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) first(ctx context.Context, query string, arg string) (*users.User, error) {
	if arg == "" {
		return nil, users.ErrNotFound
	}
	var user users.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query users (%s): %w", query, err)
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, u *users.User) error {
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = users.StatusNone
	}
	if u.Role == "" {
		u.Role = users.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) LinkGoogle(ctx context.Context, id, sub string) error {
	return r.update(ctx, id, map[string]interface{}{"google_sub": sub})
}

func (r *UserRepo) ApplyBilling(ctx context.Context, id string, c users.BillingChanges) error {
	var subscriptionID interface{}
	if c.SubscriptionID != nil {
		subscriptionID = *c.SubscriptionID
	}
	updates := map[string]interface{}{
		"external_subscription_id": subscriptionID,
		"subscription_status":      string(c.Status),
		"updated_at":               c.UpdatedAt,
	}
	if c.CustomerID != nil {
		updates["external_customer_id"] = *c.CustomerID
	}
	return r.update(ctx, id, updates)
}

func (r *UserRepo) update(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]users.User, error) {
	var list []users.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}
