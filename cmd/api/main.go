package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gobarber/cmd/internal/config"
	"gobarber/cmd/internal/dashboard"
	"gobarber/cmd/internal/domain/sqlite"
	"gobarber/cmd/internal/domain/sqlite/repository"
	cognitoclient "gobarber/cmd/internal/integration/aws/cognito"
	"gobarber/cmd/internal/integration/gobarber"
	"gobarber/cmd/internal/routes"
	"gobarber/cmd/internal/service"
	"gobarber/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const purgeInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}
	log.SetLevel(cfg.LogLvl())

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("failed to load timezone", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	validators.Register(validate)

	// Init SQLite
	db, err := sqlite.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Cognito client
	cogClient, err := cognitoclient.InitCognitoClient(ctx, cognitoclient.Options{
		Region:       cfg.Cognito.Region,
		ClientID:     cfg.Cognito.ClientID,
		ClientSecret: cfg.Cognito.ClientSecret,
	})
	if err != nil {
		log.Fatal("failed to initialize cognito client", err)
	}

	// GoBarber API
	api, err := gobarber.NewClient(cfg.API.BaseURL, gobarber.WithRateLimit(cfg.API.RPS, cfg.API.Burst))
	if err != nil {
		log.Fatal("failed to initialize gobarber client", err)
	}
	boards := dashboard.NewRegistry(ctx, api, dashboard.Options{
		Location:     loc,
		FetchTimeout: cfg.API.FetchTimeout,
	})

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Getting services
	sessionService := service.NewSessionService(userRepo, sessionRepo, boards, validate, cogClient, []byte(cfg.Session.Secret), cfg.Session.TTL)
	dashboardService := service.NewDashboardService(boards, validate)

	// Getting routes
	sessionRoutes := routes.NewSessionDefault(sessionService, cfg.SecureCookie)
	dashboardRoutes := routes.NewDashboardDefault(dashboardService)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.LogLvl())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Mount(e, sessionService, sessionRoutes, dashboardRoutes)

	go purgeSessions(ctx, sessionService)

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}
}

func purgeSessions(ctx context.Context, sessions *service.DefaultSessionService) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	sessions.PurgeExpired()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.PurgeExpired()
		}
	}
}
