package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-builder/internal/config"
	"github.com/jonathan/resume-chat-builder/internal/llm"
	"github.com/jonathan/resume-chat-builder/internal/observability"
	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/session"
	"github.com/jonathan/resume-chat-builder/internal/store"
)

// loadConfig reads the optional config file and fills gaps from the
// environment.
func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	cfg = cfg.FromEnv()
	cfg.Verbose = cfg.Verbose || verbose
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *zap.Logger {
	if cfg.Verbose {
		return observability.NewDevLogger()
	}
	return observability.NewLogger("info")
}

// buildManager wires the model client, optional persistence and the
// session manager. The returned cleanup closes everything.
func buildManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session.Manager, func(), error) {
	modelCfg := llm.DefaultConfig()
	if cfg.Model != "" {
		modelCfg = modelCfg.WithModel(llm.TierStandard, cfg.Model)
	}

	client, err := llm.NewClient(ctx, modelCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	var st session.Store
	var dbStore *store.Store
	if cfg.DatabaseURL != "" {
		dbStore, err = store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		if err := dbStore.EnsureSchema(ctx); err != nil {
			dbStore.Close()
			client.Close()
			return nil, nil, err
		}
		st = dbStore
	}

	chat := pipeline.NewChat(client, logger)
	manager := session.NewManager(chat, st, logger)

	cleanup := func() {
		manager.Close()
		if dbStore != nil {
			dbStore.Close()
		}
		client.Close()
		_ = logger.Sync()
	}
	return manager, cleanup, nil
}
