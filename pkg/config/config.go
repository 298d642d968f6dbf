// Package config loads polarcoaster settings from a TOML file and the
// environment.
//
// Values are layered: [Default] first, then the TOML file passed to [Load],
// then POLARCOASTER_* environment variables. Command line flags are applied
// last by the CLI.
//
//	[viewport]
//	width = 1280
//	height = 720
//
//	[cart]
//	time_per_segment = "800ms"
//
// The same setting from the environment:
//
//	POLARCOASTER_CART_TIME_PER_SEGMENT=800ms
package config

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/errors"
	"github.com/matzehuels/polarcoaster/pkg/layout"
	"github.com/matzehuels/polarcoaster/pkg/pipeline"
	"github.com/matzehuels/polarcoaster/pkg/scene"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POLARCOASTER_"

// Server defaults.
const (
	DefaultAddr       = "127.0.0.1:8080"
	DefaultSessionTTL = 30 * time.Minute
	DefaultMaxSession = 1024
)

// Config holds every tunable setting.
type Config struct {
	Viewport ViewportConfig `toml:"viewport" envPrefix:"VIEWPORT_"`
	Layout   LayoutConfig   `toml:"layout" envPrefix:"LAYOUT_"`
	Track    TrackConfig    `toml:"track" envPrefix:"TRACK_"`
	Cart     CartConfig     `toml:"cart" envPrefix:"CART_"`
	Server   ServerConfig   `toml:"server" envPrefix:"SERVER_"`
	Cache    CacheConfig    `toml:"cache" envPrefix:"CACHE_"`
}

// ViewportConfig is the drawing surface size in pixels.
type ViewportConfig struct {
	Width  float64 `toml:"width" env:"WIDTH"`
	Height float64 `toml:"height" env:"HEIGHT"`
}

// LayoutConfig controls how much of the viewport the tree may occupy.
type LayoutConfig struct {
	FillX float64 `toml:"fill_x" env:"FILL_X"`
	FillY float64 `toml:"fill_y" env:"FILL_Y"`
}

// TrackConfig styles the rails and ties and sets the hover radius.
type TrackConfig struct {
	Gauge     float64   `toml:"gauge" env:"GAUGE"`
	Thickness float64   `toml:"thickness" env:"THICKNESS"`
	Ties      []float64 `toml:"ties" env:"TIES" envSeparator:","`
	Color     string    `toml:"color" env:"COLOR"`
	HitRadius float64   `toml:"hit_radius" env:"HIT_RADIUS"`
}

// CartConfig sets the animation speed.
type CartConfig struct {
	TimePerSegment time.Duration `toml:"time_per_segment" env:"TIME_PER_SEGMENT"`
}

// ServerConfig configures `polarcoaster serve`.
type ServerConfig struct {
	Addr        string        `toml:"addr" env:"ADDR"`
	SessionTTL  time.Duration `toml:"session_ttl" env:"SESSION_TTL"`
	MaxSessions int           `toml:"max_sessions" env:"MAX_SESSIONS"`
}

// CacheConfig selects the cache backend. Redis wins over the file cache
// when an address is set. A non-empty Scope namespaces every key, so
// deployments sharing one redis keep their entries apart.
type CacheConfig struct {
	Disabled bool   `toml:"disabled" env:"DISABLED"`
	Dir      string `toml:"dir" env:"DIR"`
	Redis    string `toml:"redis" env:"REDIS"`
	Scope    string `toml:"scope" env:"SCOPE"`
}

// Default returns the built-in settings.
func Default() Config {
	so := scene.DefaultOptions()
	return Config{
		Viewport: ViewportConfig{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight},
		Layout:   LayoutConfig{FillX: layout.DefaultFillX, FillY: layout.DefaultFillY},
		Track: TrackConfig{
			Gauge:     so.Track.Gauge,
			Thickness: so.Track.Thickness,
			Ties:      so.Track.Ties,
			Color:     string(so.Track.Color),
			HitRadius: scene.DefaultHitRadius,
		},
		Cart:   CartConfig{TimePerSegment: cart.DefaultTimePerSegment},
		Server: ServerConfig{Addr: DefaultAddr, SessionTTL: DefaultSessionTTL, MaxSessions: DefaultMaxSession},
	}
}

// Load layers the TOML file at path (if non-empty) and the environment over
// [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := errors.ValidateViewport(c.Viewport.Width, c.Viewport.Height); err != nil {
		return err
	}
	if err := errors.ValidateFraction("layout.fill_x", c.Layout.FillX); err != nil {
		return err
	}
	if err := errors.ValidateFraction("layout.fill_y", c.Layout.FillY); err != nil {
		return err
	}
	if c.Track.Gauge < 0 || c.Track.Thickness <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "track gauge and thickness must be positive")
	}
	for _, f := range c.Track.Ties {
		if f < 0 || f > 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "track.ties: %g outside [0, 1]", f)
		}
	}
	if c.Track.HitRadius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "track.hit_radius must not be negative")
	}
	if c.Cart.TimePerSegment <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cart.time_per_segment must be positive, got %s", c.Cart.TimePerSegment)
	}
	if c.Server.SessionTTL < 0 || c.Server.MaxSessions < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl and server.max_sessions must not be negative")
	}
	return nil
}

// PipelineOptions returns the layout settings as pipeline options. Render
// settings are left for the caller.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Width:          c.Viewport.Width,
		Height:         c.Viewport.Height,
		FillX:          c.Layout.FillX,
		FillY:          c.Layout.FillY,
		Gauge:          c.Track.Gauge,
		Thickness:      c.Track.Thickness,
		Ties:           c.Track.Ties,
		Color:          c.Track.Color,
		HitRadius:      c.Track.HitRadius,
		TimePerSegment: c.Cart.TimePerSegment,
	}
}
