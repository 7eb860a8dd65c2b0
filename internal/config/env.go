package config

import (
	"os"
	"strconv"
)

// FromEnv overlays RINGLOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("RINGLOG_IMAGE_PATH"); v != "" {
		cfg.ImagePath = v
	}
	if v := os.Getenv("RINGLOG_CAPACITY"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Device.Capacity = uint32(n)
		}
	}
	if v := os.Getenv("RINGLOG_BLOCK_SIZE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Device.BlockSize = uint32(n)
		}
	}
	if v := os.Getenv("RINGLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("RINGLOG_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("RINGLOG_PRODUCER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Producer.Enabled = b
		}
	}
	if v := os.Getenv("RINGLOG_PRODUCER_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Producer.IntervalMs = n
		}
	}
	if v := os.Getenv("RINGLOG_MONITOR_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Monitor.Enabled = b
		}
	}
	if v := os.Getenv("RINGLOG_MONITOR_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.IntervalMs = n
		}
	}
	if v := os.Getenv("RINGLOG_APPEND_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.AppendMaxBytes = uint32(n)
		}
	}
	if v := os.Getenv("RINGLOG_RECOVER_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RecoverOnStart = b
		}
	}
	if v := os.Getenv("RINGLOG_HTTP"); v != "" {
		cfg.HTTPAddr = v
	}
}
