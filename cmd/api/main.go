// @title           Expense Approval API
// @version         1.0
// @description     Multi-tenant expense submission and approval workflow.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	"golang.org/x/sync/errgroup"

	_ "github.com/spendline/expense-approval/docs"
	"github.com/spendline/expense-approval/internal/api"
	"github.com/spendline/expense-approval/internal/api/handler"
	"github.com/spendline/expense-approval/internal/core/ports"
	"github.com/spendline/expense-approval/internal/core/service"
	"github.com/spendline/expense-approval/internal/infrastructure/assistant/gemini"
	mongodb "github.com/spendline/expense-approval/internal/infrastructure/db/mongo"
	redisdb "github.com/spendline/expense-approval/internal/infrastructure/db/redis"
	"github.com/spendline/expense-approval/internal/infrastructure/stream"
	"github.com/spendline/expense-approval/internal/pkg/config"
	"github.com/spendline/expense-approval/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "expense-approval: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "expense-approval",
		Env:     cfg.Env,
	})
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; tokens are signed with an empty key")
	}

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "expense-approval",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	credentials := mongodb.NewCredentialRepository(db)
	users := mongodb.NewUserRepository(db)
	companies := mongodb.NewCompanyRepository(db)
	expenses := mongodb.NewExpenseRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"credentials": credentials.EnsureIndexes,
		"users":       users.EnsureIndexes,
		"expenses":    expenses.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	guard := redisdb.NewSubmissionGuard(rdb, cfg.Expenses.IdempotencyTTL)
	cache := redisdb.NewSuggestionCache(rdb, cfg.Assistant.CacheTTL)

	// --- Assistant ---
	var generator ports.TextGenerator
	if cfg.Assistant.APIKey != "" {
		generator = gemini.NewClient(gemini.Config{
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			BaseURL: cfg.Assistant.BaseURL,
			RPS:     cfg.Assistant.RPS,
			Timeout: cfg.Assistant.Timeout,
		}, logger.Component("gemini"))
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; assistant suggestions are disabled")
	}

	// --- Services ---
	catalog := cfg.Catalog()
	identitySvc := service.NewIdentityService(credentials, users, companies, cfg.JWTSecret, cfg.JWTTTL,
		cfg.Expenses.DefaultCurrency, logger.Component("identity"))
	directorySvc := service.NewDirectoryService(users, logger.Component("directory"))
	expenseSvc := service.NewExpenseService(expenses, users, guard, catalog, logger.Component("expenses"))
	assistantSvc := service.NewAssistantService(generator, cache, expenses, cfg.Assistant.Timeout, logger.Component("assistant"))

	// --- Live views ---
	hub := stream.NewHub(cfg.Stream.Workers, logger.Component("stream"))
	watcher := mongodb.NewExpenseWatcher(db, hub, logger.Component("watcher"))

	e := api.NewRouter(api.Dependencies{
		Identity:  identitySvc,
		Directory: directorySvc,
		Expenses:  expenseSvc,
		Assistant: assistantSvc,
		Hub:       hub,
		Catalog:   catalog,
		Health: []handler.DependencyCheck{
			handler.MongoCheck(db),
			handler.RedisCheck(rdb, false),
		},
		JWTSecret: cfg.JWTSecret,
		Logger:    logger.Component("http"),
	})

	g, gctx := errgroup.WithContext(ctx)

	hub.Start(gctx)

	g.Go(func() error {
		return watcher.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server exited gracefully")
	return nil
}
