package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "backend_url":
			cfg.BackendURL = val
		case "poll_interval_ms":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.PollIntervalMS = n
			}
		case "auto_start_polling":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.AutoStartPolling = b
			}
		case "model":
			cfg.Model = val
		case "api_key":
			cfg.APIKey = val
		case "base_url":
			cfg.BaseURL = val
		case "log_path":
			cfg.LogPath = val
		}
	}
	return cfg
}
