package admin

import (
	"errors"
	"net/http"
	"time"

	"garden-ai/internal/domain/access"
	"garden-ai/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AdminUser struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	StripeCustomerID   *string   `json:"stripe_customer_id,omitempty"`
	StripeSubID        *string   `json:"stripe_subscription_id,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	Access             string    `json:"access"` // allowed|never_subscribed|lapsed
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type AdminStats struct {
	TotalUsers      int            `json:"total_users"`
	ActiveUsers     int            `json:"active_users"`
	UsersPerStatus  map[string]int `json:"users_per_status"`
	LinkedCustomers int            `json:"linked_customers"`
}

type Handler struct {
	store users.Store
	log   zerolog.Logger
}

func NewHandler(store users.Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	adminUsers := make([]AdminUser, 0, len(list))
	for _, u := range list {
		adminUsers = append(adminUsers, toAdminUser(u))
	}
	c.JSON(http.StatusOK, adminUsers)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	stats := AdminStats{TotalUsers: len(list), UsersPerStatus: map[string]int{}}
	for _, u := range list {
		status := string(u.SubscriptionStatus)
		if status == "" {
			status = string(users.StatusNone)
		}
		stats.UsersPerStatus[status]++
		if u.SubscriptionStatus == users.StatusActive {
			stats.ActiveUsers++
		}
		if u.HasCustomer() {
			stats.LinkedCustomers++
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetUserDetails(c *gin.Context) {
	u, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", c.Param("id")).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}
	c.JSON(http.StatusOK, toAdminUser(*u))
}

func toAdminUser(u users.User) AdminUser {
	d := access.Decide(u.SubscriptionStatus)
	state := "allowed"
	if !d.Allowed {
		state = string(d.Reason)
	}
	return AdminUser{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		StripeCustomerID:   u.ExternalCustomerID,
		StripeSubID:        u.ExternalSubscriptionID,
		SubscriptionStatus: string(u.SubscriptionStatus),
		Access:             state,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
