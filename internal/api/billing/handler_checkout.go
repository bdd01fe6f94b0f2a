package billing

import (
	"context"
	"errors"
	"net/http"

	"garden-ai/internal/app/http/middleware"
	"garden-ai/internal/domain/plans"
	"garden-ai/internal/domain/users"
	"garden-ai/internal/infra/stripe"
	"garden-ai/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Initiator starts hosted checkout and billing portal sessions.
type Initiator interface {
	Start(ctx context.Context, req stripe.CheckoutRequest) (*stripe.CheckoutSession, error)
	Portal(ctx context.Context, user users.User) (string, error)
}

type Handler struct {
	users     users.Store
	initiator Initiator
	log       zerolog.Logger
}

func NewHandler(store users.Store, initiator Initiator, log zerolog.Logger) *Handler {
	return &Handler{
		users:     store,
		initiator: initiator,
		log:       log.With().Str("component", "billing").Logger(),
	}
}

type checkoutBody struct {
	PlanID  string `json:"planId"`
	IsTrial bool   `json:"isTrial"`
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body checkoutBody
	if err := c.ShouldBindJSON(&body); err != nil || body.PlanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid planId"})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	session, err := h.initiator.Start(c.Request.Context(), stripe.CheckoutRequest{
		User:   *user,
		PlanID: body.PlanID,
		Trial:  body.IsTrial,
	})
	switch {
	case errors.Is(err, plans.ErrUnknownPlan):
		metrics.CheckoutSessionsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	case errors.Is(err, plans.ErrTrialNotEligible):
		metrics.CheckoutSessionsTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Free trial is not available for this plan"})
		return
	case err != nil:
		metrics.CheckoutSessionsTotal.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Str("user_id", user.ID).Str("plan_id", body.PlanID).Msg("checkout session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	h.log.Info().
		Str("user_id", user.ID).
		Str("plan_id", body.PlanID).
		Bool("trial", body.IsTrial).
		Str("session_id", session.ID).
		Msg("checkout session created")
	c.JSON(http.StatusOK, session)
}

func (h *Handler) CreateBillingPortal(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	url, err := h.initiator.Portal(c.Request.Context(), *user)
	if errors.Is(err, stripe.ErrNoCustomer) {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("billing portal session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// currentUser loads the authenticated user, writing the error response
// itself when it returns false.
func (h *Handler) currentUser(c *gin.Context) (*users.User, bool) {
	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return nil, false
	}
	user, err := h.users.FindByID(c.Request.Context(), userID)
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return nil, false
	}
	return user, true
}
