package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/notiapp/notiapp/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals are
// given in seconds; empty fields leave the runtime Config untouched.
type JsonConfig struct {
	ServerBaseURL              string   `json:"server_base_url"`
	DatabasePath               string   `json:"database_path"`
	Origin                     string   `json:"origin"`
	StaticGeneration           string   `json:"static_generation"`
	DynamicGeneration          string   `json:"dynamic_generation"`
	StaticAssets               []string `json:"static_assets"`
	AppShell                   string   `json:"app_shell"`
	OnlineCheckIntervalSeconds int      `json:"online_check_interval_seconds"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags via flagx.JsonConfigFlags();
// if no path is given, nothing is loaded. Read or unmarshal errors panic
// (caller should recover if desired). Intended usage is
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.Origin != "" {
		cfg.Origin = jc.Origin
	}
	if jc.StaticGeneration != "" {
		cfg.StaticGeneration = jc.StaticGeneration
	}
	if jc.DynamicGeneration != "" {
		cfg.DynamicGeneration = jc.DynamicGeneration
	}
	if len(jc.StaticAssets) > 0 {
		cfg.StaticAssets = jc.StaticAssets
	}
	if jc.AppShell != "" {
		cfg.AppShell = jc.AppShell
	}
	if jc.OnlineCheckIntervalSeconds > 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckIntervalSeconds) * time.Second
	}
}
