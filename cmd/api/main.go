package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mcastellanos/orghub-backend/api/routes"
	"github.com/mcastellanos/orghub-backend/internal/auth"
	"github.com/mcastellanos/orghub-backend/internal/joinrequests"
	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/internal/organizations"
	"github.com/mcastellanos/orghub-backend/internal/users"
	"github.com/mcastellanos/orghub-backend/pkg/auth/session"
	"github.com/mcastellanos/orghub-backend/pkg/config"
	"github.com/mcastellanos/orghub-backend/pkg/db"
	"github.com/mcastellanos/orghub-backend/pkg/logger"
	"github.com/mcastellanos/orghub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	orgRepo := organizations.NewRepository(dbClient.DB())
	membershipRepo := memberships.NewRepository(dbClient.DB())
	requestRepo := joinrequests.NewRepository(dbClient.DB())

	resolver, err := memberships.NewResolver(orgRepo, membershipRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create access resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Users:       userRepo,
		Memberships: membershipRepo,
		Orgs:        orgRepo,
		Sessions:    sessionManager,
		JWT:         cfg.JWT,
		Password:    cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	orgService, err := organizations.NewService(orgRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create organization service", err)
		os.Exit(1)
	}

	membershipService, err := memberships.NewService(membershipRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create membership service", err)
		os.Exit(1)
	}

	requestService, err := joinrequests.NewService(requestRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create join request service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Auth:         authService,
			Orgs:         orgService,
			Memberships:  membershipService,
			JoinRequests: requestService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
