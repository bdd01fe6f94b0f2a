package users

import (
	"errors"
	"net/http"

	"garden-ai/internal/app/http/middleware"
	"garden-ai/internal/domain/access"
	"garden-ai/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	store users.Store
	log   zerolog.Logger
}

func NewHandler(store users.Store, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.store.FindByID(c.Request.Context(), userID)
	if errors.Is(err, users.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("load user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, BuildMeResponse(*user, access.Decide(user.SubscriptionStatus)))
}
