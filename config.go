package tiled

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAtlasSize       = 2048
	defaultImageCacheBytes = 64 << 20
	defaultWatchDebounce   = 100 * time.Millisecond
)

// AtlasConfig bounds the atlases packed for collection tilesets.
type AtlasConfig struct {
	MaxWidth  int `mapstructure:"max_width"`
	MaxHeight int `mapstructure:"max_height"`
	Padding   int `mapstructure:"padding"`
}

// WatchConfig controls file watching for hot reload.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds the loader settings.
type Config struct {
	Atlas AtlasConfig `mapstructure:"atlas"`

	// IndependentInstances lets each map instance spawn as soon as its own
	// atlases are packed. When false, no instance spawns until every tracked
	// instance has its atlases.
	IndependentInstances bool `mapstructure:"independent_instances"`

	// YUp flips the vertical axis so that row 0 of a layer is at the bottom.
	YUp bool `mapstructure:"y_up"`

	// LayerFadeIn fades freshly spawned layers in over this duration. Zero
	// disables fading.
	LayerFadeIn time.Duration `mapstructure:"layer_fade_in"`

	Watch           WatchConfig `mapstructure:"watch"`
	ImageCacheBytes int64       `mapstructure:"image_cache_bytes"`
	LogLevel        string      `mapstructure:"log_level"`
	LogFormat       string      `mapstructure:"log_format"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Atlas: AtlasConfig{
			MaxWidth:  defaultAtlasSize,
			MaxHeight: defaultAtlasSize,
		},
		Watch:           WatchConfig{Debounce: defaultWatchDebounce},
		ImageCacheBytes: defaultImageCacheBytes,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadConfig reads the configuration from path (any format viper knows) and
// from TILED_* environment variables, e.g. TILED_ATLAS_MAX_WIDTH. An empty
// path reads the environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix("tiled")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("tiled: config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("tiled: config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every key
// gets a default.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("atlas.max_width", d.Atlas.MaxWidth)
	v.SetDefault("atlas.max_height", d.Atlas.MaxHeight)
	v.SetDefault("atlas.padding", d.Atlas.Padding)
	v.SetDefault("independent_instances", d.IndependentInstances)
	v.SetDefault("y_up", d.YUp)
	v.SetDefault("layer_fade_in", d.LayerFadeIn)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("image_cache_bytes", d.ImageCacheBytes)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
}

// Validate checks the configuration for values the loader cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.Atlas.MaxWidth <= 0 || c.Atlas.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("atlas size %dx%d must be positive", c.Atlas.MaxWidth, c.Atlas.MaxHeight))
	}
	if c.Atlas.Padding < 0 {
		errs = append(errs, fmt.Errorf("atlas padding %d is negative", c.Atlas.Padding))
	}
	if c.LayerFadeIn < 0 {
		errs = append(errs, fmt.Errorf("layer_fade_in %v is negative", c.LayerFadeIn))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce %v is negative", c.Watch.Debounce))
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("tiled: config: %w", err)
	}
	return nil
}

// PackConfig returns the atlas bounds in the form PackAtlases takes.
func (c Config) PackConfig() PackConfig {
	return PackConfig{
		MaxWidth:  c.Atlas.MaxWidth,
		MaxHeight: c.Atlas.MaxHeight,
		Padding:   c.Atlas.Padding,
	}
}
