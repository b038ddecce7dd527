package main

import (
	"fmt"

	"github.com/at-ishikawa/lessoncraft/internal/config"
	"github.com/at-ishikawa/lessoncraft/internal/database"
	"github.com/at-ishikawa/lessoncraft/internal/inference/openai"
	"github.com/at-ishikawa/lessoncraft/internal/library"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newRepository(cfg *config.Config) (library.Repository, func(), error) {
	switch cfg.Library.Driver {
	case "mysql":
		db, err := database.Open(cfg.Library.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		return library.NewDBRepository(db), func() { _ = db.Close() }, nil
	default:
		return library.NewYAMLRepository(cfg.Library.Directory), func() {}, nil
	}
}

func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.ImageModel, cfg.OpenAI.RetryAttempts), nil
}
