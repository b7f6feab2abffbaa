package tiled

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := DefaultConfig()
	if cfg != want {
		t.Errorf("LoadConfig(\"\") = %+v, want %+v", cfg, want)
	}
	if cfg.PackConfig() != (PackConfig{MaxWidth: 2048, MaxHeight: 2048}) {
		t.Errorf("PackConfig = %+v", cfg.PackConfig())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiled.yaml")
	data := []byte(`atlas:
  max_width: 512
  padding: 2
independent_instances: true
layer_fade_in: 250ms
watch:
  enabled: true
log_format: json
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TILED_ATLAS_MAX_HEIGHT", "1024")
	t.Setenv("TILED_Y_UP", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Atlas.MaxWidth != 512 || cfg.Atlas.MaxHeight != 1024 || cfg.Atlas.Padding != 2 {
		t.Errorf("Atlas = %+v, want {512 1024 2}", cfg.Atlas)
	}
	if !cfg.IndependentInstances || !cfg.YUp {
		t.Errorf("IndependentInstances, YUp = %v, %v, want true, true", cfg.IndependentInstances, cfg.YUp)
	}
	if cfg.LayerFadeIn != 250*time.Millisecond {
		t.Errorf("LayerFadeIn = %v, want 250ms", cfg.LayerFadeIn)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Atlas.MaxWidth = 0 }},
		{"negative padding", func(c *Config) { c.Atlas.Padding = -1 }},
		{"negative fade", func(c *Config) { c.LayerFadeIn = -time.Second }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"
	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want JSONFormatter", log.Formatter)
	}

	cfg.LogLevel = "loud"
	if _, err := NewLogger(cfg); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewLogger(Config{LogFormat: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
