package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shihanqu/discord-quote-bot/internal/api"
	"github.com/shihanqu/discord-quote-bot/internal/auth"
	"github.com/shihanqu/discord-quote-bot/internal/config"
	"github.com/shihanqu/discord-quote-bot/internal/database"
	"github.com/shihanqu/discord-quote-bot/internal/gateway"
	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/platform"
	redisclient "github.com/shihanqu/discord-quote-bot/internal/redis"
	"github.com/shihanqu/discord-quote-bot/internal/scheduler"
	"github.com/shihanqu/discord-quote-bot/internal/selectmenu"
	"github.com/shihanqu/discord-quote-bot/internal/service"
	"github.com/shihanqu/discord-quote-bot/internal/snowflake"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	sf, err := snowflake.NewGenerator(1)
	if err != nil {
		logger.Error("snowflake init failed", "error", err)
		os.Exit(1)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	pinEmoji, err := models.ParseEmojiRef(cfg.ReactionEmoji)
	if err != nil {
		logger.Error("invalid REACTION_EMOJI", "error", err)
		os.Exit(1)
	}

	// --- Services ---

	quotes := database.NewQuoteRepository(pool)
	quoteSvc := service.NewQuoteService(quotes, sf)
	selector := service.NewSelector(quotes, service.SelectorConfig{
		ContentThreshold: cfg.ContentMatchThreshold,
		AuthorThreshold:  cfg.AuthorMatchThreshold,
		RepeatAvoidance:  cfg.RepeatAvoidance,
	})
	sessions := selectmenu.NewManager(rdb, 5*time.Minute)

	platformClient := platform.NewClient(cfg.PlatformAPIURL, cfg.BotToken, logger)

	// --- Gateway ---

	consumer := gateway.NewConsumer(quoteSvc, platformClient, platformClient, pinEmoji, logger)
	gatewayClient := gateway.NewClient(cfg.GatewayURL, cfg.BotToken, consumer.HandleEvent, logger)

	// --- Recurring posts ---

	jobs, err := scheduler.ParseJobs(cfg.RecurringPosts)
	if err != nil {
		logger.Error("invalid RECURRING_POSTS", "error", err)
		os.Exit(1)
	}
	sched := scheduler.New(selector, platformClient, logger)
	if err := sched.AddJobs(jobs); err != nil {
		logger.Error("scheduling recurring posts failed", "error", err)
		os.Exit(1)
	}

	// --- Echo ---

	deps := &api.Dependencies{
		Quotes:       api.NewQuoteHandler(quoteSvc, selector, platformClient, platformClient, cfg.AdminRoleID),
		Selections:   api.NewSelectionHandler(quoteSvc, selector, sessions),
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("quotebot API starting", "addr", cfg.APIAddr)
		if err := e.Start(cfg.APIAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		logger.Info("connecting to gateway", "url", cfg.GatewayURL)
		if err := gatewayClient.Run(sigCtx); err != nil && err != context.Canceled {
			logger.Error("gateway stopped", "error", err)
		}
	}()

	sched.Start()

	<-sigCtx.Done()
	logger.Info("shutting down")
	sched.Stop()
	if err := e.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
