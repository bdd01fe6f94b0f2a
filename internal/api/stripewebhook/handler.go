package stripewebhooks

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"garden-ai/internal/domain/billing"
	"garden-ai/internal/infra/stripe"
	"garden-ai/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 65536

// Reconciler applies a classified intent to the user store.
type Reconciler interface {
	Apply(ctx context.Context, intent billing.Intent) (billing.Outcome, error)
}

type Handler struct {
	verifier   *stripe.Verifier
	reconciler Reconciler
	log        zerolog.Logger
}

func NewHandler(verifier *stripe.Verifier, reconciler Reconciler, log zerolog.Logger) *Handler {
	return &Handler{
		verifier:   verifier,
		reconciler: reconciler,
		log:        log.With().Str("component", "stripe_webhook").Logger(),
	}
}

// StripeWebhook answers 200 for everything that must not be redelivered,
// 400 for unauthenticated or unreadable deliveries and 500 for store faults.
func (h *Handler) StripeWebhook(c *gin.Context) {
	start := time.Now()

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		h.log.Warn().Err(err).Msg("unreadable webhook body")
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn().Err(err).Msg("stripe signature verification failed")
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "bad_signature").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	eventType := string(event.Type)
	log := h.log.With().Str("event_id", event.ID).Str("event_type", eventType).Logger()
	defer func() {
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	intent, err := stripe.Classify(event)
	var missing *billing.MissingDataError
	switch {
	case errors.As(err, &missing):
		log.Error().Strs("fields", missing.Fields).Msg("event is missing required data, acknowledging")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, string(billing.ResultMissingData)).Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	case err != nil:
		log.Warn().Err(err).Msg("failed to parse event object")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event"})
		return
	}

	out, err := h.reconciler.Apply(c.Request.Context(), intent)
	metrics.WebhookEventsTotal.WithLabelValues(eventType, string(out.Result)).Inc()
	if err != nil {
		log.Error().Err(err).Str("action", string(out.Action)).Msg("reconciliation failed, asking for redelivery")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Temporary failure, retry later"})
		return
	}

	log.Debug().
		Str("action", string(out.Action)).
		Str("result", string(out.Result)).
		Str("user_id", out.UserID).
		Msg("event processed")
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
