package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niklvrr/mentorq/internal/config"
	"github.com/niklvrr/mentorq/internal/infrastructure/cache"
	"github.com/niklvrr/mentorq/internal/infrastructure/db"
	"github.com/niklvrr/mentorq/internal/infrastructure/lcs"
	"github.com/niklvrr/mentorq/internal/infrastructure/repository"
	"github.com/niklvrr/mentorq/internal/security"
	"github.com/niklvrr/mentorq/internal/transport"
	"github.com/niklvrr/mentorq/internal/transport/handler"
	"github.com/niklvrr/mentorq/internal/usecase/service"
	"github.com/niklvrr/mentorq/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// config init
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	// logger init
	log, err := logger.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// db init
	ctx := context.Background()
	pool, err := db.NewDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Fatal("failed to init database", zap.Error(err))
	}
	defer pool.Close()

	// LCS и опциональный кеш профилей
	var gateway service.IdentityGateway = lcs.NewClient(cfg.LCS.URL, cfg.LCS.Timeout, log)
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		gateway = cache.NewProfileCache(gateway, rdb, cfg.Redis.ProfileCacheTTL, log)
		log.Info("profile cache enabled", zap.Duration("ttl", cfg.Redis.ProfileCacheTTL))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// layers init
	ticketRepo := repository.NewTicketRepository(pool, log)
	feedbackRepo := repository.NewFeedbackRepository(pool, log)
	statsRepo := repository.NewStatsRepository(pool, log)
	userRepo := repository.NewUserRepository(pool, log)

	tokens := security.NewTokenProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	authService := service.NewAuthService(gateway, userRepo, tokens, log)
	ticketService := service.NewTicketService(ticketRepo, userRepo, gateway, service.NewTicketMetrics(registry), log)
	feedbackService := service.NewFeedbackService(feedbackRepo, log)
	statsService := service.NewStatsService(statsRepo, cfg.App.LeaderboardDefaultLimit, log)

	router := transport.NewRouter(transport.Handlers{
		Auth:     handler.NewAuthHandler(authService, log),
		Ticket:   handler.NewTicketHandler(ticketService, log),
		Feedback: handler.NewFeedbackHandler(feedbackService, log),
		Stats:    handler.NewStatsHandler(statsService, log),
		Health:   handler.NewHealthHandler(pool, log),
	}, authService, registry, cfg.App, log)

	// server init
	srv := transport.NewServer(cfg.App.Port, router, cfg.App.RequestTimeout, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
