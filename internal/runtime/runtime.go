package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/internal/ring"
	"github.com/rzbill/ringlog/internal/status"
	"github.com/rzbill/ringlog/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Config  cfgpkg.Config
	Logger  log.Logger
}

// Runtime wires the flash image, the ring engine, and the status collector
// for a single daemon instance.
type Runtime struct {
	dev       *flash.File
	engine    *ring.Engine
	collector *status.Collector
	config    cfgpkg.Config
}

// Open validates the configuration, opens (or creates) the flash image,
// and builds the engine over it. The engine starts uninitialized; the
// caller decides between a recovery scan and an explicit position.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.ErrorLevel))
	}

	imagePath := cfg.ImagePath
	if imagePath == "" {
		if opts.DataDir == "" {
			opts.DataDir = cfgpkg.DefaultDataDir()
		}
		if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
			return nil, err
		}
		imagePath = filepath.Join(opts.DataDir, "flash.img")
	}

	dev, err := flash.OpenFile(imagePath, cfg.Device)
	if err != nil {
		return nil, err
	}
	engine, err := ring.New(dev, ring.Options{
		MaxAppend: cfg.AppendMaxBytes,
		Logger:    logger.WithComponent("ring"),
	})
	if err != nil {
		dev.Close()
		return nil, err
	}
	cfg.ImagePath = imagePath
	return &Runtime{
		dev:       dev,
		engine:    engine,
		collector: status.NewCollector(engine),
		config:    cfg,
	}, nil
}

// Close syncs and closes the flash image.
func (r *Runtime) Close() error {
	if r.dev == nil {
		return nil
	}
	return r.dev.Close()
}

// CheckHealth performs a simple device liveness check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.dev == nil {
		return errors.New("device not open")
	}
	var b [1]byte
	return r.dev.ReadAt(0, b[:])
}

// Engine returns the ring engine.
func (r *Runtime) Engine() *ring.Engine { return r.engine }

// Device returns the flash device shared by all raw-access collaborators.
func (r *Runtime) Device() flash.Device { return r.dev }

// Collector returns the status snapshot collector.
func (r *Runtime) Collector() *status.Collector { return r.collector }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
