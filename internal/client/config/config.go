package config

import "time"

// Config holds runtime settings for the NotiApp client.
//
// Fields:
//   - ServerBaseURL: base URL of the NotiApp API server.
//   - DatabasePath: path to the local SQLite file (":memory:" for ephemeral).
//   - Origin: host the cache strategies treat as same-origin.
//   - StaticGeneration / DynamicGeneration: cache generation names; bump the
//     suffix to invalidate everything cached under the old names.
//   - StaticAssets: URLs precached during install.
//   - AppShell: the fallback document served for offline page loads.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	Origin              string
	StaticGeneration    string
	DynamicGeneration   string
	StaticAssets        []string
	AppShell            string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "notiapp.db"
	c.Origin = "127.0.0.1:8080"
	c.StaticGeneration = "notiapp-static-v2"
	c.DynamicGeneration = "notiapp-dynamic-v2"
	c.StaticAssets = []string{
		"/",
		"/index.html",
		"/styles.css",
		"/app.js",
		"/manifest.json",
		"/icon.svg",
	}
	c.AppShell = "/index.html"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
