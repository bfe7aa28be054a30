package config

import (
	"encoding/json"
	"os"

	"github.com/notiapp/notiapp/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the runtime Config untouched.
type JsonConfig struct {
	EndpointAddr    string `json:"endpoint_addr"`
	StorageBackend  string `json:"storage_backend"`
	DatabaseDSN     string `json:"database_dsn"`
	RedisAddr       string `json:"redis_addr"`
	VAPIDPublicKey  string `json:"vapid_public_key"`
	VAPIDPrivateKey string `json:"vapid_private_key"`
	VAPIDSubject    string `json:"vapid_subject"`
	StaticDir       string `json:"static_dir"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags(); if no
// path is given, nothing is loaded. Read or unmarshal errors panic.
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

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.StorageBackend != "" {
		cfg.StorageBackend = jc.StorageBackend
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RedisAddr != "" {
		cfg.RedisAddr = jc.RedisAddr
	}
	if jc.VAPIDPublicKey != "" {
		cfg.VAPIDPublicKey = jc.VAPIDPublicKey
	}
	if jc.VAPIDPrivateKey != "" {
		cfg.VAPIDPrivateKey = jc.VAPIDPrivateKey
	}
	if jc.VAPIDSubject != "" {
		cfg.VAPIDSubject = jc.VAPIDSubject
	}
	if jc.StaticDir != "" {
		cfg.StaticDir = jc.StaticDir
	}
}
