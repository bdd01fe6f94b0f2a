package middleware

import (
	"errors"
	"net/http"

	"garden-ai/internal/domain/access"
	"garden-ai/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CtxDecision holds the access.Decision for requests that passed the guard.
const CtxDecision = "access_decision"

// RequireActiveSubscription consults the gate on every request. Must run
// after AuthMiddleware.
func RequireActiveSubscription(gate *access.Gate, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		d, err := gate.Check(c.Request.Context(), userID)
		if errors.Is(err, users.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("entitlement check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not verify subscription"})
			return
		}

		switch {
		case d.Allowed:
			c.Set(CtxDecision, d)
			c.Next()
		case d.Reason == access.ReasonNeverSubscribed:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":  "An active subscription is required",
				"reason": d.Reason,
			})
		default:
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":  "Your subscription is not active",
				"reason": d.Reason,
			})
		}
	}
}
