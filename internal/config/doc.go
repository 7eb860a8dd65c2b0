// Package config provides loading and environment overlay for the ringlog
// daemon configuration. It exposes a Default() baseline, file loading for
// JSON and YAML by extension, and a RINGLOG_* env overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/ringlog.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { ... }
package config
