package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"backend/internal/compliance_checker"
	"backend/internal/config"
	"backend/internal/embedding"
	"backend/internal/generation_client"
	"backend/internal/repository"
	"backend/internal/review_client"
	"backend/internal/seed"
	"backend/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Content generation client. The pipeline cannot operate without it.
	generator, err := generation_client.NewClient(generation_client.Config{
		APIKey:     cfg.Generation.APIKey,
		ModelName:  cfg.Generation.ModelName,
		MaxRetries: cfg.Generation.MaxRetries,
		RetryDelay: time.Duration(cfg.Generation.RetryDelaySecs) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation client", zap.Error(err))
	}
	defer generator.Close()

	// Advisory review client. Optional: without it every check runs on the
	// rule engine alone.
	var reviewer compliance_checker.Reviewer
	if groq, err := review_client.NewClient(review_client.Config{
		APIKey:     cfg.Review.APIKey,
		BaseURL:    cfg.Review.BaseURL,
		ModelName:  cfg.Review.ModelName,
		MaxRetries: cfg.Review.MaxRetries,
		Timeout:    time.Duration(cfg.Review.TimeoutSecs) * time.Second,
	}, logger); err != nil {
		logger.Warn("Failed to initialize review client, continuing without AI review", zap.Error(err))
	} else {
		reviewer = groq
	}

	// Seed default users and sample rules on an empty database
	authRepo := repository.NewAuthRepository(db, logger)
	ruleRepo := repository.NewRuleRepository(db, logger)
	embedder := embedding.NewHashEmbedder(cfg.Embedding.Dimension)
	index := embedding.NewPostgresIndex(db, embedder, logger)
	seeder := seed.New(authRepo, ruleRepo, index, logger)
	if err := seeder.Run(context.Background(), cfg.Auth.SeedPassword); err != nil {
		logger.Fatal("Failed to seed database", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize and run the server
	srv := server.NewServer(db, cfg, generator, reviewer, logger)
	go func() {
		if err := srv.Run(cfg.Server.Port); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Application stopped.")
}
