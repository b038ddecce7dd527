package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/lessoncraft/internal/config"
	"github.com/at-ishikawa/lessoncraft/internal/database"
	"github.com/at-ishikawa/lessoncraft/internal/generator"
	"github.com/at-ishikawa/lessoncraft/internal/inference/openai"
	"github.com/at-ishikawa/lessoncraft/internal/library"
	"github.com/at-ishikawa/lessoncraft/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load(os.Getenv("LESSONCRAFT_CONFIG"))
	if err != nil {
		return fmt.Errorf("config.Load() > %w", err)
	}

	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.ImageModel, cfg.OpenAI.RetryAttempts)
	defer func() {
		_ = openaiClient.Close()
	}()

	var repository library.Repository
	if cfg.Library.Driver == "mysql" {
		db, err := database.Open(cfg.Library.MySQL)
		if err != nil {
			return fmt.Errorf("database.Open() > %w", err)
		}
		defer func() {
			_ = db.Close()
		}()
		repository = library.NewDBRepository(db)
	} else {
		repository = library.NewYAMLRepository(cfg.Library.Directory)
	}

	gen := generator.NewGenerator(openaiClient,
		generator.WithMaxAttempts(cfg.Generation.MaxAttempts),
		generator.WithTemperature(cfg.Generation.Temperature),
	)
	handler := server.NewLessonHandler(gen, repository)
	router := server.NewRouter(cfg.Server, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Default().Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, h2c.NewHandler(router, &http2.Server{}))
}
