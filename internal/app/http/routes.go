package routes

import (
	"net/http"

	adminapi "garden-ai/internal/api/admin"
	authapi "garden-ai/internal/api/auth"
	"garden-ai/internal/api/billing"
	"garden-ai/internal/api/chat"
	"garden-ai/internal/api/plans"
	stripewebhooks "garden-ai/internal/api/stripewebhook"
	usersapi "garden-ai/internal/api/users"
	"garden-ai/internal/app/http/middleware"
	"garden-ai/internal/domain/access"
	"garden-ai/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Deps struct {
	JWTSecret []byte
	Gate      *access.Gate
	Log       zerolog.Logger

	Webhook *stripewebhooks.Handler
	Billing *billing.Handler
	Plans   *plans.Handler
	Chat    *chat.Handler
	Google  *authapi.GoogleHandler
	Users   *usersapi.Handler
	Admin   *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// raw body: signature is computed over the exact bytes
	r.POST("/webhook", d.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.GET("/plans", d.Plans.ListPlans)
	public.GET("/auth/google", d.Google.GoogleStart)
	public.GET("/auth/google/callback", d.Google.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret))
	auth.GET("/me", d.Users.GetCurrentUser)

	billingForms := auth.Group("/")
	billingForms.Use(middleware.SanitizeAndCleanInputMiddleware())
	billingForms.POST("/create-checkout-session", d.Billing.CreateCheckoutSession)
	billingForms.POST("/billing-portal", d.Billing.CreateBillingPortal)

	// Subscribed users. Chat is plain text returned as JSON, so messages
	// are validated, not rewritten.
	subscribed := auth.Group("/api")
	subscribed.Use(middleware.RequireActiveSubscription(d.Gate, d.Log))
	subscribed.POST("/generate", d.Chat.Generate)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole(users.RoleAdmin))
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.GET("/stats", d.Admin.GetAdminStats)
	admin.GET("/user/:id", d.Admin.GetUserDetails)
	admin.GET("/plans/check", d.Plans.CheckPrices)
}
