package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	BackendURL       string `toml:"backend_url"`
	PollIntervalMS   int    `toml:"poll_interval_ms"`
	AutoStartPolling bool   `toml:"auto_start_polling"`
	Model            string `toml:"model"`
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	LogPath          string `toml:"log_path"`
	Source           string `toml:"-"`
}

func Default() Config {
	return Config{
		BackendURL:       "http://localhost:5000",
		PollIntervalMS:   5000,
		AutoStartPolling: true,
		Model:            "gpt-4",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kraken", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = Default().PollIntervalMS
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); env != "" {
		cfg.APIKey = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); env != "" {
		cfg.BaseURL = env
	}
	if env := strings.TrimSpace(os.Getenv("KRAKEN_BACKEND_URL")); env != "" {
		cfg.BackendURL = env
	}
	return cfg
}
