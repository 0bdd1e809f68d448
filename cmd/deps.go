package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"github.com/spigell/jobnado/internal/ai/gemini"
	"github.com/spigell/jobnado/internal/alerts"
	"github.com/spigell/jobnado/internal/artifacts"
	"github.com/spigell/jobnado/internal/logger"
	"github.com/spigell/jobnado/internal/mailer"
	"github.com/spigell/jobnado/internal/opportunity"
	"github.com/spigell/jobnado/internal/profile"
	"github.com/spigell/jobnado/internal/retry"
	"github.com/spigell/jobnado/internal/secrets"
	"github.com/spigell/jobnado/internal/session"
	"go.uber.org/zap"
)

// application holds the pipeline wired from configuration.
type application struct {
	config        *Config
	logger        *zap.Logger
	generator     *gemini.Generator
	analyzer      *profile.Analyzer
	searcher      *opportunity.Searcher
	artifacts     *artifacts.Generator
	alertStore    alerts.Store
	mailer        alerts.Mailer
	sweeper       *alerts.Sweeper
	subscriptions *alerts.Subscriptions

	closers []func()
}

// setup builds the logger and config the same way for every command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the jobnado", zap.String("version", version))

	return logger, config
}

func newApplication(ctx context.Context, config *Config, log *zap.Logger, withAlerts bool) (*application, error) {
	a := &application{config: config, logger: log}

	generator, err := newGenerator(ctx, config.Gemini, log)
	if err != nil {
		return nil, fmt.Errorf("building gemini client: %w", err)
	}
	a.generator = generator

	analysisPolicy, err := newPolicy(config.Analysis)
	if err != nil {
		return nil, fmt.Errorf("analysis retry: %w", err)
	}

	searchPolicy, err := newPolicy(config.Search)
	if err != nil {
		return nil, fmt.Errorf("search retry: %w", err)
	}

	a.analyzer = profile.NewAnalyzer(generator, analysisPolicy, logger.ForStage(log, "analysis"))
	a.searcher = opportunity.NewSearcher(generator, searchPolicy, logger.ForStage(log, "search"))
	a.artifacts = artifacts.New(generator, generator, logger.ForStage(log, "artifacts"))

	if !withAlerts || config.Alerts == nil || !config.Alerts.Enabled {
		return a, nil
	}

	store, closeStore, err := newAlertStore(ctx, config.Alerts)
	if err != nil {
		return nil, fmt.Errorf("building alert store: %w", err)
	}
	a.alertStore = store
	a.closers = append(a.closers, closeStore)

	a.mailer = newMailer(config.Resend, log)
	a.sweeper = alerts.NewSweeper(store, generator, a.mailer, config.Alerts.From, log)
	a.subscriptions = alerts.NewSubscriptions(store, a.artifacts, a.mailer, config.Alerts.From, log)

	return a, nil
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newGenerator(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (*gemini.Generator, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	return gemini.NewGenerator(ctx, gemini.Options{
		APIKey:            apiKey,
		Model:             cfg.Model,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxLogLength:      cfg.MaxLogLength,
	}, log)
}

func newPolicy(cfg *StageConfig) (retry.Policy, error) {
	if cfg == nil || cfg.Retry == nil {
		return retry.New(3, retry.StrategyLinear, 0)
	}
	return retry.New(cfg.Retry.Attempts, cfg.Retry.Strategy, cfg.Retry.BaseDelay)
}

func newAlertStore(ctx context.Context, cfg *AlertsConfig) (alerts.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", "memory":
		return alerts.NewMemoryStore(), func() {}, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("alerts.database-url (DATABASE_URL) is required for the postgres store")
		}
		pool, err := alerts.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := alerts.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case "sqlite":
		store, err := alerts.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported alert store: %s", cfg.Store)
	}
}

// newMailer returns nil when no email key is configured so alerts are swept
// without sending.
func newMailer(cfg *ResendConfig, log *zap.Logger) alerts.Mailer {
	if cfg == nil {
		return nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "resend api key",
		Value: cfg.APIKey,
		Env:   "RESEND_API_KEY",
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		log.Warn("email delivery is disabled", zap.Error(err))
		return nil
	}

	client := mailer.New(apiKey, log.Named("mailer"))
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return client
}

func newSessionStore(ctx context.Context, cfg *SessionConfig) (session.Store, func(), error) {
	if cfg == nil {
		cfg = &SessionConfig{}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", "memory":
		return session.NewMemoryStore(cfg.TTL), func() {}, nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, nil, fmt.Errorf("session.redis-url (REDIS_URL) is required for the redis store")
		}
		rdb, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(rdb, cfg.TTL), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}
