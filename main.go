package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/echo-shopbot/server/internal/agent"
	"github.com/echo-shopbot/server/internal/agent/classifier"
	"github.com/echo-shopbot/server/internal/agent/guard"
	"github.com/echo-shopbot/server/internal/agent/handlers"
	"github.com/echo-shopbot/server/internal/agent/humanizer"
	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/agent/session"
	"github.com/echo-shopbot/server/internal/core"
	"github.com/echo-shopbot/server/internal/httpapi"
	"github.com/echo-shopbot/server/internal/llm"
	"github.com/echo-shopbot/server/internal/observability"
	"github.com/echo-shopbot/server/internal/shopify"
	logx "github.com/echo-shopbot/server/pkg/logger"
	pkgredis "github.com/echo-shopbot/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Commerce platform
	Shopify shopify.Config

	// Infrastructure
	Redis pkgredis.Config

	// Pipeline configs
	Guard      model.GuardConfig
	Classifier model.ClassifierModelConfig
	Rewriter   model.RewriterModelConfig
	Session    model.SessionConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	models, err := llm.NewModels(ctx, llm.ClientConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		ClassifierCfg: &cfg.Classifier,
		RewriterCfg:   &cfg.Rewriter,
	})
	if err != nil {
		log.Fatalf("Failed to initialise chat models: %v", err)
	}

	store, err := buildSessionStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialise session store: %v", err)
	}

	commerce := shopify.NewClient(cfg.Shopify)
	metrics := observability.NewMetrics("shopbot")

	coordinator := agent.NewCoordinator(
		guard.New(cfg.Guard),
		classifier.New(models.Classifier),
		humanizer.New(models.Rewriter),
		handlers.Safe(handlers.NewOrderHandler(commerce), handlers.AgentOrder),
		handlers.Safe(handlers.NewProductInfoHandler(commerce, models.Classifier), handlers.AgentProductInfo),
		handlers.Safe(handlers.NewRecommendationHandler(commerce, models.Classifier), handlers.AgentRecommendation),
		handlers.NewGeneralHandler(),
		metrics,
	)

	server := httpapi.New(coordinator, store)

	logx.Info().Str("addr", cfg.HTTPAddr).Str("environment", env.String()).Msg("starting server")
	if err := http.ListenAndServe(cfg.HTTPAddr, server.Router()); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func buildSessionStore(ctx context.Context, cfg AppConfig) (session.Store, error) {
	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(cfg.Session.Backend, "redis") {
		rdb, err := cfg.Redis.New()
		if err != nil {
			return nil, err
		}
		logx.Info().Msg("using Redis session store")
		return session.NewRedisStore(rdb, ttl), nil
	}

	sweep, err := time.ParseDuration(cfg.Session.SweepInterval)
	if err != nil {
		return nil, err
	}

	store := session.NewMemoryStore()
	store.StartJanitor(ctx, ttl, sweep)
	logx.Info().Dur("ttl", ttl).Msg("using in-memory session store")
	return store, nil
}
