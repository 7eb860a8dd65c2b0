package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rzbill/ringlog/internal/flash"
)

// Config is the top-level daemon configuration loaded from file/env.
type Config struct {
	// ImagePath is the flash image file. Empty means <data-dir>/flash.img.
	ImagePath string `json:"imagePath" yaml:"image_path"`

	Device   flash.Geometry `json:"device" yaml:"device"`
	Log      Log            `json:"log" yaml:"log"`
	Producer Producer       `json:"producer" yaml:"producer"`
	Monitor  Monitor        `json:"monitor" yaml:"monitor"`

	// AppendMaxBytes caps a single append. Zero means one block.
	AppendMaxBytes uint32 `json:"appendMaxBytes" yaml:"append_max_bytes"`

	// RecoverOnStart runs the cursor recovery scan at daemon startup.
	RecoverOnStart bool `json:"recoverOnStart" yaml:"recover_on_start"`

	HTTPAddr string `json:"httpAddr" yaml:"http_addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Producer configures the periodic telemetry appender.
type Producer struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	IntervalMs int    `json:"intervalMs" yaml:"interval_ms"`
	SourceName string `json:"sourceName" yaml:"source_name"`
}

// Monitor configures the periodic status snapshot log.
type Monitor struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	IntervalMs int  `json:"intervalMs" yaml:"interval_ms"`
}

// Default returns built-in defaults: the geometry of a 4 MiB part with
// 4 KiB erase blocks, matching the chips this was built around.
func Default() Config {
	return Config{
		Device: flash.Geometry{
			Capacity:  4 << 20,
			BlockSize: 4096,
		},
		Log: Log{Level: "info", Format: "text"},
		Producer: Producer{
			Enabled:    true,
			IntervalMs: 5000,
			SourceName: "telemetry",
		},
		Monitor: Monitor{
			Enabled:    true,
			IntervalMs: 10000,
		},
		RecoverOnStart: true,
		HTTPAddr:       ":8080",
	}
}

// Load reads configuration from a JSON or YAML file (by extension),
// overlaying onto defaults. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c Config) Validate() error {
	if err := c.Device.Validate(); err != nil {
		return err
	}
	if c.AppendMaxBytes > c.Device.Capacity {
		return fmt.Errorf("config: appendMaxBytes %d exceeds capacity %d", c.AppendMaxBytes, c.Device.Capacity)
	}
	if c.Producer.Enabled && c.Producer.IntervalMs <= 0 {
		return fmt.Errorf("config: producer interval must be > 0")
	}
	if c.Monitor.Enabled && c.Monitor.IntervalMs <= 0 {
		return fmt.Errorf("config: monitor interval must be > 0")
	}
	return nil
}
