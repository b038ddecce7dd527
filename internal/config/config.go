package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Library    LibraryConfig    `mapstructure:"library"`
	Outputs    OutputsConfig    `mapstructure:"outputs"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Generation GenerationConfig `mapstructure:"generation"`
	Server     ServerConfig     `mapstructure:"server"`
}

type LibraryConfig struct {
	// Driver selects where lessons are stored: "yaml" or "mysql".
	Driver    string      `mapstructure:"driver" validate:"oneof=yaml mysql"`
	Directory string      `mapstructure:"directory"`
	MySQL     MySQLConfig `mapstructure:"mysql"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type OutputsConfig struct {
	LessonDirectory string `mapstructure:"lesson_directory"`
	ImageDirectory  string `mapstructure:"image_directory"`
}

type OpenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	ImageModel    string `mapstructure:"image_model"`
	RetryAttempts uint   `mapstructure:"retry_attempts"`
}

type GenerationConfig struct {
	MaxAttempts int     `mapstructure:"max_attempts" validate:"gt=0"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lessoncraft")
	}

	v.SetDefault("library.driver", "yaml")
	v.SetDefault("library.directory", filepath.Join("library", "lessons"))
	v.SetDefault("library.mysql.host", "127.0.0.1")
	v.SetDefault("library.mysql.port", 3306)
	v.SetDefault("library.mysql.database", "lessoncraft")
	v.SetDefault("outputs.lesson_directory", filepath.Join("outputs", "lessons"))
	v.SetDefault("outputs.image_directory", filepath.Join("outputs", "images"))
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.image_model", "dall-e-3")
	v.SetDefault("openai.retry_attempts", 2)
	v.SetDefault("generation.max_attempts", 3)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("openai.image_model", "OPENAI_IMAGE_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_IMAGE_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("library.mysql.user", "MYSQL_USER"); err != nil {
		return nil, fmt.Errorf("failed to bind MYSQL_USER environment variable: %w", err)
	}
	if err := v.BindEnv("library.mysql.password", "MYSQL_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind MYSQL_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator() > %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		var messages []string
		for _, fieldError := range err.(validator.ValidationErrors) {
			messages = append(messages, fieldError.Translate(trans))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}
