package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=json text"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TimeLimit     int    `yaml:"time_limit" validate:"gte=0"`
		Tick          string `yaml:"tick"`
		QuestionCount int    `yaml:"question_count" validate:"gte=0,lte=50"`
		Source        string `yaml:"source" validate:"omitempty,oneof=local remote"`
		Difficulty    string `yaml:"difficulty" validate:"omitempty,oneof=mixed easy medium hard"`
		Category      string `yaml:"category"`
		CacheTTL      string `yaml:"cache_ttl"`
		SessionTTL    string `yaml:"session_ttl"`
	} `yaml:"quiz"`
	Trivia struct {
		BaseURL string `yaml:"base_url" validate:"omitempty,url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"trivia"`
	Scores struct {
		Store string `yaml:"store" validate:"omitempty,oneof=memory redis postgres"`
		Key   string `yaml:"key"`
		Limit int    `yaml:"limit" validate:"gte=0"`
	} `yaml:"scores"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// every component falls back to its defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
