package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai/gemini"
	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/conversation"
	"github.com/spigell/college-counselor/internal/logger"
	"github.com/spigell/college-counselor/internal/ranking"
	"github.com/spigell/college-counselor/internal/readiness"
	"github.com/spigell/college-counselor/internal/secrets"
	"github.com/spigell/college-counselor/internal/session"
	"github.com/spigell/college-counselor/internal/storage"
)

// counselorApp bundles what the commands share.
type counselorApp struct {
	driver   *conversation.Driver
	sessions *session.Store[*conversation.Session]
	storage  storage.Store
}

func (a *counselorApp) Close() error {
	return a.storage.Close()
}

func loadCatalog(config *Config, logger *zap.Logger) (*catalog.Catalog, error) {
	if config.CatalogFile == "" {
		return catalog.Default(), nil
	}

	c, err := catalog.LoadFile(config.CatalogFile)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded catalog", zap.String("file", config.CatalogFile), zap.Int("colleges", c.Len()))
	return c, nil
}

func newRanker(config *Config, logger *zap.Logger) (*ranking.Ranker, error) {
	ranker := ranking.New()
	for _, name := range config.Ranking.DisabledBonuses {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !ranker.DisableByName(name, "disabled in configuration") {
			return nil, fmt.Errorf("unknown ranking bonus %q", name)
		}
		logger.Info("ranking bonus disabled", zap.String("bonus", name))
	}
	return ranker, nil
}

func newOracle(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (*gemini.Oracle, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	oracle, err := gemini.New(ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        cfg.Model,
		MaxRetries:   cfg.MaxRetries,
		MaxLogLength: cfg.MaxLogLength,
	}, log)
	if err != nil {
		return nil, err
	}
	return oracle, nil
}

// buildApp wires the driver from configuration. Without a usable oracle the counselor still runs on
// fallbacks: no extraction, heuristic readiness and canned replies.
func buildApp(ctx context.Context, config *Config, log *zap.Logger) (*counselorApp, error) {
	cat, err := loadCatalog(config, log)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	ranker, err := newRanker(config, log)
	if err != nil {
		return nil, err
	}

	deps := conversation.Deps{
		Ranker:  ranker,
		Catalog: cat,
		Logger:  log,
	}

	if config.Gemini.Enabled {
		oracle, err := newOracle(ctx, config.Gemini, log)
		if err != nil {
			log.Warn("oracle unavailable, running on fallbacks", zap.Error(err))
		} else {
			oracleLog := logger.WithCommonFields(log, gemini.Provider, oracle.Model())
			deps.Extractor = oracle
			deps.Responder = oracle
			deps.Evaluator = readiness.NewEvaluator(oracle, config.Oracle.Timeout, oracleLog)
			oracleLog.Info("oracle enabled")
		}
	} else {
		log.Info("oracle disabled, running on fallbacks")
	}

	store, err := storage.New(config.Storage.Config, log)
	if err != nil {
		return nil, fmt.Errorf("opening %q storage: %w", config.Storage.Driver, err)
	}

	sessions := conversation.NewSessionStore(config.Session, log)
	deps.Sessions = sessions
	deps.Storage = store

	driver, err := conversation.New(conversation.Config{
		Counselor:      config.Counselor,
		OracleTimeout:  config.Oracle.Timeout,
		StorageTimeout: config.Storage.Timeout,
	}, deps)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &counselorApp{driver: driver, sessions: sessions, storage: store}, nil
}
