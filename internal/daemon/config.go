// Package daemon manages the LumeIQ daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all daemon configuration.
type Config struct {
	Data    DataConfig    `toml:"data"`
	API     APIConfig     `toml:"api"`
	Vision  VisionConfig  `toml:"vision"`
	Routing RoutingConfig `toml:"routing"`
	Logging LoggingConfig `toml:"logging"`
}

// DataConfig controls local storage.
type DataConfig struct {
	Dir string `toml:"dir"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	Metrics     bool     `toml:"metrics"`
}

// VisionConfig controls the image classification provider. An empty API key
// disables vision: every verification then takes the offline-approved path.
type VisionConfig struct {
	APIKey string `toml:"api_key"`
}

// RoutingConfig controls the routing and geocoding endpoints.
type RoutingConfig struct {
	OSRMBaseURL      string `toml:"osrm_base_url"`
	NominatimBaseURL string `toml:"nominatim_base_url"`
	UserAgent        string `toml:"user_agent"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := lumeiqHome()
	return Config{
		Data: DataConfig{
			Dir: filepath.Join(homeDir, "data"),
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8090,
			CORSOrigins: []string{"*"},
			Metrics:     true,
		},
		Routing: RoutingConfig{
			UserAgent: "lumeiq/1.0",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "lumeiq.log"),
		},
	}
}

// LoadConfig reads config from ~/.lumeiq/config.toml, falling back to
// defaults. A .env file in the home dir and process env vars supply
// secrets so the API key never has to live in the config file.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(lumeiqHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// Optional .env beside the config; missing file is fine
	godotenv.Load(filepath.Join(lumeiqHome(), ".env"))

	if key := os.Getenv("LUMEIQ_VISION_API_KEY"); key != "" {
		cfg.Vision.APIKey = key
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.lumeiq/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(lumeiqHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// lumeiqHome returns the LumeIQ data directory.
func lumeiqHome() string {
	if env := os.Getenv("LUMEIQ_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lumeiq")
}

// Home is exported for use by other packages.
func Home() string {
	return lumeiqHome()
}
