package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SteamAPIKey  string `yaml:"steam_api_key"`
	SteamID      string `yaml:"steam_id"`
	GeminiAPIKey string `yaml:"gemini_api_key"`

	GeminiModel   string `yaml:"gemini_model"`
	GeminiBaseURL string `yaml:"gemini_base_url"`
	SteamBaseURL  string `yaml:"steam_base_url"`
	MaxTokens     int    `yaml:"max_tokens"`

	AnalysisLimit int `yaml:"analysis_limit"`
	// RefreshSchedule is an optional cron expression for automatic library
	// refreshes while the dashboard is open. Empty disables it.
	RefreshSchedule string `yaml:"refresh_schedule"`

	Theme string `yaml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		GeminiModel:   defaultGeminiModel,
		GeminiBaseURL: defaultGeminiBaseURL,
		SteamBaseURL:  defaultSteamBaseURL,
		MaxTokens:     8192,
		AnalysisLimit: DefaultAnalysisLimit,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}
	if cfg.GeminiBaseURL == "" {
		cfg.GeminiBaseURL = defaultGeminiBaseURL
	}
	if cfg.SteamBaseURL == "" {
		cfg.SteamBaseURL = defaultSteamBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}
	if cfg.AnalysisLimit <= 0 {
		cfg.AnalysisLimit = DefaultAnalysisLimit
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// The file carries API keys; keep it private.
	return os.WriteFile(path, data, 0600)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "shelf", "config.yml")
}
