package config

import (
	"flag"
	"os"

	"github.com/notiapp/notiapp/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   bind address for the HTTP API
//	-s string   storage backend (memory, postgres, redis)
//	-d string   PostgreSQL DSN
//	-r string   Redis address
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to bind the HTTP API")
	fs.StringVar(&cfg.StorageBackend, "s", cfg.StorageBackend, "storage backend (memory, postgres, redis)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
