package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"garden-ai/internal/app/http/middleware"
	"garden-ai/internal/domain/users"
	"garden-ai/internal/infra/db"
	"garden-ai/internal/infra/db/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := db.NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &users.User{ID: "u1", Email: "rose@garden.test", Name: "Rose"}))
	cus, sub := "cus_1", "sub_1"
	require.NoError(t, repo.ApplyBilling(ctx, "u1", users.BillingChanges{
		CustomerID: &cus, SubscriptionID: &sub, Status: "unpaid",
	}))

	h := NewHandler(repo, zerolog.Nop())
	r := gin.New()
	r.GET("/me", func(c *gin.Context) {
		c.Set(middleware.CtxUserID, c.GetHeader("X-Test-User"))
	}, h.GetCurrentUser)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Test-User", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, "past_due", resp.Billing.Status)
	assert.True(t, resp.Billing.HasCustomer)
	require.NotNil(t, resp.Billing.Subscription)
	assert.Equal(t, "sub_1", resp.Billing.Subscription.StripeSubscriptionID)
	assert.False(t, resp.Access.Allowed)
	assert.Equal(t, "lapsed", resp.Access.Reason)
	assert.Empty(t, resp.Access.Capabilities)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Test-User", "ghost")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
