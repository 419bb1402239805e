package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"foodorder-api/config"
	"foodorder-api/database"
	adminapi "foodorder-api/internal/api/admin"
	authapi "foodorder-api/internal/api/auth"
	billingapi "foodorder-api/internal/api/billing"
	storesapi "foodorder-api/internal/api/stores"
	stripewebhooks "foodorder-api/internal/api/stripewebhook"
	usersapi "foodorder-api/internal/api/users"
	routes "foodorder-api/internal/app/http"
	"foodorder-api/internal/app/http/middleware"
	"foodorder-api/internal/app/scheduler"
	"foodorder-api/internal/domain/billing"
	"foodorder-api/internal/domain/stores"
	"foodorder-api/internal/domain/subscriptions"
	"foodorder-api/internal/infra/repository"
	stripegw "foodorder-api/internal/infra/stripe"
	"foodorder-api/internal/lib/clock"
	"foodorder-api/internal/lib/sl"
	"foodorder-api/internal/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "foodorder-api",
		Short:         "Food ordering platform API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Expire overdue trials once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			n, err := a.subscriptions.ExpireOverdue(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("sweep finished", slog.Int("expired", n))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "reevaluate",
		Short: "Recompute open/closed for every scheduled store once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			n, err := a.stores.ReevaluateAll(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("reevaluation finished", slog.Int("changed", n))
			return nil
		},
	})

	return root
}

type app struct {
	log           *slog.Logger
	clock         clock.Clock
	loc           *time.Location
	metrics       *metrics.Metrics
	repos         repos
	stores        *stores.Service
	subscriptions *subscriptions.Service
	payments      *billing.Recorder
	gateway       *stripegw.Gateway
}

type repos struct {
	users         *repository.Users
	orders        *repository.Orders
	stores        *repository.Stores
	subscriptions *repository.Subscriptions
	payments      *repository.Payments
}

// bootstrap loads configuration, connects the database and wires the services.
func bootstrap() (*app, error) {
	config.LoadEnv()
	log := setupLogger(config.LOG_LEVEL)

	loc, err := time.LoadLocation(config.DEFAULT_TIMEZONE)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", config.DEFAULT_TIMEZONE, err)
	}

	db, err := database.InitDB(config.DB_URL)
	if err != nil {
		log.Error("failed to init database", sl.Err(err))
		return nil, err
	}
	log.Info("connected and migrated")

	clk := clock.Real{}
	m := metrics.Default()
	r := repos{
		users:         repository.NewUsers(db),
		orders:        repository.NewOrders(db),
		stores:        repository.NewStores(db),
		subscriptions: repository.NewSubscriptions(db),
		payments:      repository.NewPayments(db),
	}

	engine := stores.NewEngine(r.stores, clk, loc, m, log)
	return &app{
		log:           log,
		clock:         clk,
		loc:           loc,
		metrics:       m,
		repos:         r,
		stores:        stores.NewService(r.stores, engine, log),
		subscriptions: subscriptions.NewService(r.subscriptions, repository.NewUnitOfWork(db, clk, log), clk, m, log),
		payments:      billing.NewRecorder(r.payments, clk, m, log),
		gateway: stripegw.NewGateway(stripegw.Config{
			SecretKey:     config.STRIPE_SECRET_KEY,
			WebhookSecret: config.STRIPE_WEBHOOK_SECRET,
			PriceMonthly:  config.STRIPE_PRICE_MONTHLY,
			PriceYearly:   config.STRIPE_PRICE_YEARLY,
			AppURL:        config.APP_URL,
		}),
	}, nil
}

func serve(ctx context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}

	if strings.EqualFold(os.Getenv("GIN_MODE"), gin.ReleaseMode) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth: authapi.NewHandler(a.repos.users, a.stores, a.subscriptions,
			config.JWT_SECRET, config.BASE_DOMAIN, a.clock, a.log),
		Users:  usersapi.NewHandler(a.repos.users, a.subscriptions, a.clock, a.log),
		Stores: storesapi.NewHandler(a.stores, config.BASE_DOMAIN, a.log),
		Billing: billingapi.NewHandler(a.subscriptions, a.gateway, a.payments,
			a.repos.orders, a.stores, a.log),
		Admin:               adminapi.NewHandler(a.payments, a.subscriptions, a.repos.subscriptions, a.loc, a.log),
		Webhook:             stripewebhooks.NewHandler(a.gateway, a.subscriptions, a.metrics, a.log),
		Authenticate:        middleware.AuthMiddleware(config.JWT_SECRET),
		RequireSubscription: middleware.RequireActiveSubscription(a.subscriptions, a.clock, a.log),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(a.subscriptions, a.stores, config.SWEEP_INTERVAL, config.REEVALUATE_INTERVAL, a.log)
	schedDone := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(schedDone)
	}()

	srv := &http.Server{
		Addr:              ":" + config.PORT,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			a.log.Error("server failed", sl.Err(err))
			stop()
			<-schedDone
			return err
		}
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("graceful shutdown failed", sl.Err(err))
	}
	<-schedDone
	return nil
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}
