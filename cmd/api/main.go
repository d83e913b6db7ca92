package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/travelmate/travelmate-ai/cmd/mainconfig"
	"github.com/travelmate/travelmate-ai/internal/agents"
	"github.com/travelmate/travelmate-ai/internal/api/router"
	"github.com/travelmate/travelmate-ai/internal/chat"
	appconfig "github.com/travelmate/travelmate-ai/internal/config"
	"github.com/travelmate/travelmate-ai/internal/notify"
	"github.com/travelmate/travelmate-ai/internal/observability/metrics"
	"github.com/travelmate/travelmate-ai/internal/orchestrator"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/toolkits/amadeus"
	"github.com/travelmate/travelmate-ai/internal/toolkits/weather"
	"github.com/travelmate/travelmate-ai/internal/toolkits/websearch"
	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/internal/users"
	"github.com/travelmate/travelmate-ai/migrations"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting travelmate-ai API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"default_phase", cfg.DefaultPhase,
	)

	ctx := context.Background()

	db, err := sql.Open("sqlite3", cfg.DatabasePath+"?_foreign_keys=on")
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DatabasePath)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := runMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	planningMetrics := metrics.NewPlanningMetrics(registry)

	// Repositories
	userRepo := users.NewRepository(db)
	tripRepo := trips.NewRepository(db)
	chatRepo := chat.NewRepository(db)
	planRepo := plans.NewRepository(db)
	contextBuilder := chat.NewContextBuilder(chatRepo, cfg.ContextWindow)

	// LLM providers: Gemini primary, Bedrock Converse fallback.
	llm, err := buildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize llm client", "error", err)
		os.Exit(1)
	}

	// Vendor toolkits. Each is optional; the planner degrades to web search
	// and placeholders for anything left unconfigured.
	tools := buildVendorTools(cfg, logger)

	model := cfg.BedrockModelID
	maxTokens := int32(cfg.LLMMaxTokens)
	temperature := float32(cfg.LLMTemperature)

	extractor := agents.NewRequirementsExtractor(llm, model, maxTokens, temperature, logger)
	planner := agents.NewTripPlanner(llm, tools, model, maxTokens, temperature, logger)
	planner.SetMetrics(planningMetrics)
	optimizer := agents.NewPlanOptimizer(llm, tools.Web, model, maxTokens, temperature, logger)

	deps := orchestrator.Deps{
		Context:   contextBuilder,
		Extractor: extractor,
		Planner:   planner,
		Optimizer: optimizer,
		Trips:     tripRepo,
		Plans:     planRepo,
		Chat:      chatRepo,
		Metrics:   planningMetrics,
		Logger:    logger,
	}

	registryPhases := orchestrator.NewRegistry(cfg.DefaultPhase)
	registryPhases.Register(orchestrator.NewSequential(deps))
	registryPhases.Register(orchestrator.NewGraph(deps))
	registryPhases.Register(orchestrator.NewGroupChat(deps, llm, buildPendingStore(cfg, logger), orchestrator.GroupChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}))

	notifier := notify.NewService(buildEmailSender(ctx, cfg, logger), logger)
	approvals := orchestrator.NewApprovals(tripRepo, planRepo, chatRepo, userRepo, notifier, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Orchestrator:       orchestrator.NewHandler(registryPhases, approvals, logger),
		Plans:              plans.NewHandler(planRepo, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func runMigrations(db *sql.DB) error {
	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", srcDriver, "sqlite3", dbDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// buildLLMClient wires Gemini as the primary model with Bedrock Converse as
// fallback. Either provider alone is enough to start.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (agents.LLMClient, error) {
	var gemini agents.LLMClient
	if cfg.GeminiAPIKey != "" {
		client, err := agents.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, err
		}
		gemini = client
	}

	var bedrock agents.LLMClient
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		bedrock = agents.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	switch {
	case gemini != nil && bedrock != nil:
		return agents.NewFallbackLLMClient(gemini, bedrock, logger.Logger), nil
	case gemini != nil:
		return gemini, nil
	case bedrock != nil:
		return bedrock, nil
	default:
		return nil, errors.New("no llm provider configured: set GEMINI_API_KEY or BEDROCK_MODEL_ID")
	}
}

func buildVendorTools(cfg *appconfig.Config, logger *logging.Logger) agents.VendorTools {
	var tools agents.VendorTools

	if cfg.AmadeusAPIKey != "" {
		client, err := amadeus.New(cfg.AmadeusAPIKey, cfg.AmadeusAPISecret, cfg.AmadeusBaseURL, cfg.VendorTimeout)
		if err != nil {
			logger.Warn("amadeus disabled", "error", err)
		} else {
			tools.Flights = client
			tools.Hotels = client
			tools.Experiences = client
		}
	}

	tools.Weather = weather.New(cfg.OpenMeteoBaseURL, "", cfg.VendorTimeout)

	if cfg.TavilyAPIKey != "" {
		client, err := websearch.New(cfg.TavilyAPIKey, cfg.TavilyBaseURL, cfg.VendorTimeout)
		if err != nil {
			logger.Warn("web search disabled", "error", err)
		} else {
			tools.Web = client
		}
	}

	return tools
}

// buildPendingStore connects the Redis-backed multi-turn cache used by the
// group-chat flow. Returns nil when Redis is not configured.
func buildPendingStore(cfg *appconfig.Config, logger *logging.Logger) orchestrator.PendingStore {
	if cfg.RedisAddr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	logger.Info("pending context store enabled", "addr", cfg.RedisAddr)
	return agents.NewPendingContextStore(redis.NewClient(opts), nil, cfg.PendingTTL, cfg.PendingMaxTurns)
}

// buildEmailSender prefers SendGrid, falls back to SES, and returns nil when
// neither is configured so notifications are silently disabled.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.SendGridAPIKey != "" {
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	if cfg.SESFromEmail != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("ses email disabled", "error", err)
			return nil
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return nil
}
