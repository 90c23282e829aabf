package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sealabid/sealabid/internal/admin"
	"github.com/sealabid/sealabid/internal/alerts"
	"github.com/sealabid/sealabid/internal/auth"
	"github.com/sealabid/sealabid/internal/clock"
	"github.com/sealabid/sealabid/internal/db"
	"github.com/sealabid/sealabid/internal/envelopes"
	"github.com/sealabid/sealabid/internal/listings"
	appmw "github.com/sealabid/sealabid/internal/middleware"
	"github.com/sealabid/sealabid/internal/migrate"
	"github.com/sealabid/sealabid/internal/repository/postgres"
	"github.com/sealabid/sealabid/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		logger.Fatal("JWT_SECRET not set")
	}

	ctx := context.Background()
	dsn := db.DSNFromEnv()
	if err := migrate.Up(ctx, dsn); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	database, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer database.Close()

	listingRepo := postgres.NewListingRepo(database)
	envelopeRepo := postgres.NewEnvelopeRepo(database)
	clk := clock.Real{}

	listingSvc := service.NewListingService(listingRepo, clk)
	envelopeSvc := service.NewEnvelopeService(listingRepo, envelopeRepo, clk)
	decisionSvc := service.NewDecisionService(listingRepo, envelopeRepo, clk)

	var notifier *alerts.Notifier
	if os.Getenv("ALERTS_DISABLED") != "true" {
		mailer, merr := alerts.NewMailerFromEnv()
		if merr != nil {
			logger.Warn("mailer not configured, alerts disabled", zap.Error(merr))
		} else {
			notifier = alerts.New(alerts.RedisAddrFromEnv(), database.Pool, mailer, logger)
			defer notifier.Close()
		}
	}

	authHandler := auth.NewHandler(database, secret)
	listingHandler := listings.NewHandler(listingSvc, logger)
	envelopeHandler := envelopes.NewHandler(envelopeSvc, decisionSvc, notifier, logger)
	adminHandler := admin.NewHandler(database, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Public
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)
	e.GET("/listings", listingHandler.List)
	e.GET("/listings/:id", listingHandler.Get)

	// Authenticated
	g := e.Group("")
	g.Use(appmw.JWT(secret))
	g.GET("/me", authHandler.Me)

	g.POST("/listings", listingHandler.Create)
	g.GET("/my/listings", listingHandler.Mine)

	g.PUT("/listings/:id/envelope", envelopeHandler.Submit)
	g.GET("/listings/:id/envelope", envelopeHandler.GetOwn)
	g.POST("/envelopes/:id/withdraw", envelopeHandler.Withdraw)
	g.GET("/listings/:id/envelopes", envelopeHandler.ListForSeller)
	g.POST("/listings/:id/decide", envelopeHandler.Decide)

	// Admin
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWT(secret))
	adminGroup.Use(appmw.RequireRoles("admin"))
	adminGroup.GET("/stats", adminHandler.Stats)
	adminGroup.GET("/listings", adminHandler.ListListings)
	adminGroup.GET("/deals", adminHandler.ListDeals)
	adminGroup.GET("/users", adminHandler.ListUsers)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		logger.Info("api listening", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
