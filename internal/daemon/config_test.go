package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8090 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8090)
	}
	if !cfg.API.Metrics {
		t.Error("metrics should default on")
	}
	if cfg.Vision.APIKey != "" {
		t.Error("vision key should default empty")
	}
	if cfg.Routing.UserAgent == "" {
		t.Error("routing user agent should have a default")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LUMEIQ_HOME", home)

	toml := `
[api]
port = 9001

[routing]
osrm_base_url = "http://localhost:5000"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(toml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.Port != 9001 {
		t.Errorf("API.Port = %d, want 9001", cfg.API.Port)
	}
	if cfg.Routing.OSRMBaseURL != "http://localhost:5000" {
		t.Errorf("OSRMBaseURL = %q", cfg.Routing.OSRMBaseURL)
	}
	// untouched sections keep defaults
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want default", cfg.API.Host)
	}
}

func TestLoadConfig_EnvSuppliesVisionKey(t *testing.T) {
	t.Setenv("LUMEIQ_HOME", t.TempDir())
	t.Setenv("LUMEIQ_VISION_API_KEY", "test-key-123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vision.APIKey != "test-key-123" {
		t.Errorf("Vision.APIKey = %q, want env value", cfg.Vision.APIKey)
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LUMEIQ_HOME", home)
	// ensure the key is absent so the .env file supplies it
	t.Setenv("LUMEIQ_VISION_API_KEY", "placeholder")
	os.Unsetenv("LUMEIQ_VISION_API_KEY")

	if err := os.WriteFile(filepath.Join(home, ".env"),
		[]byte("LUMEIQ_VISION_API_KEY=dotenv-key\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vision.APIKey != "dotenv-key" {
		t.Errorf("Vision.APIKey = %q, want dotenv value", cfg.Vision.APIKey)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("LUMEIQ_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9999
	if err := SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.API.Port != 9999 {
		t.Errorf("round-trip port = %d, want 9999", loaded.API.Port)
	}
}
