package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"garden-ai/config"
	"garden-ai/database"
	adminapi "garden-ai/internal/api/admin"
	authapi "garden-ai/internal/api/auth"
	"garden-ai/internal/api/billing"
	"garden-ai/internal/api/chat"
	"garden-ai/internal/api/plans"
	stripewebhooks "garden-ai/internal/api/stripewebhook"
	usersapi "garden-ai/internal/api/users"
	routes "garden-ai/internal/app/http"
	"garden-ai/internal/app/http/middleware"
	"garden-ai/internal/domain/access"
	billingdomain "garden-ai/internal/domain/billing"
	plansdomain "garden-ai/internal/domain/plans"
	"garden-ai/internal/infra/db"
	"garden-ai/internal/infra/llm"
	"garden-ai/internal/infra/stripe"
	"garden-ai/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Init(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})

	gdb, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(gdb); err != nil {
		return err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("schema up to date")
	return nil
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.Init(logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildEngine(ctx context.Context, cfg config.Config, log zerolog.Logger) (*gin.Engine, error) {
	gdb, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(gdb); err != nil {
		return nil, err
	}
	store := db.NewUserRepo(gdb)

	catalog, err := plansdomain.NewCatalog([]plansdomain.Plan{
		{ID: plansdomain.PlanBloom, Name: "Bloom", StripePriceID: cfg.StripeBloomPriceID, Interval: "month"},
		{ID: plansdomain.PlanFullBloom, Name: "Full Bloom", StripePriceID: cfg.StripeFullBloomPriceID, Interval: "year"},
	}, cfg.TrialPlanID, cfg.TrialDays)
	if err != nil {
		return nil, fmt.Errorf("plan catalog: %w", err)
	}

	stripeClients := stripe.NewClients(cfg.StripeSecretKey)
	initiator := stripe.NewCheckoutInitiator(stripeClients.Checkout, stripeClients.Portal, catalog, cfg.AppURL)

	completer, err := llm.NewClient(llm.Options{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	idVerifier, err := authapi.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		return nil, err
	}
	google := authapi.NewGoogleHandler(
		authapi.GoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		idVerifier,
		store,
		authapi.NewTokenIssuer(cfg.JWTSecret, cfg.JWTLifetime),
		authapi.GoogleOptions{
			FrontendRedirect: cfg.GoogleFrontendRedirect,
			SecureCookie:     cfg.Production(),
			IsAdminEmail:     cfg.IsAdminEmail,
		},
		log,
	)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret: []byte(cfg.JWTSecret),
		Gate:      access.NewGate(store),
		Log:       log,
		Webhook: stripewebhooks.NewHandler(
			stripe.NewVerifier(cfg.StripeWebhookSecret, cfg.StripeWebhookTolerance),
			billingdomain.NewReconciler(store, log),
			log,
		),
		Billing: billing.NewHandler(store, initiator, log),
		Plans:   plans.NewHandler(catalog, stripeClients.Prices, log),
		Chat:    chat.NewHandler(completer, log),
		Google:  google,
		Users:   usersapi.NewHandler(store, log),
		Admin:   adminapi.NewHandler(store, log),
	})
	return r, nil
}
