package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/ringlog/internal/config"
	"github.com/rzbill/ringlog/internal/runtime"
	httpserver "github.com/rzbill/ringlog/internal/server/http"
	"github.com/rzbill/ringlog/internal/services/telemetry"
	"github.com/rzbill/ringlog/internal/status"
	logpkg "github.com/rzbill/ringlog/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := func() string { return getenv(key) }(); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir  string
	HTTPAddr string
	Config   cfgpkg.Config
}

// Run starts the daemon and blocks until ctx is cancelled. It opens the
// flash image, optionally recovers the write cursor by scanning the
// device, then serves the HTTP dispatcher alongside the telemetry
// producer and the status monitor.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context
	// or if signal delivery needs to be observed here. We layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	cfg := opts.Config
	cfgpkg.FromEnv(&cfg)
	if opts.HTTPAddr != "" {
		cfg.HTTPAddr = opts.HTTPAddr
	}

	// Build process-wide logger using env/ApplyConfig; defaults: level=info, format=text
	logCfg := &logpkg.Config{
		Level:  getenvDefault("RINGLOG_LOG_LEVEL", cfg.Log.Level),
		Format: getenvDefault("RINGLOG_LOG_FORMAT", cfg.Log.Format),
	}
	procLogger, err := logpkg.ApplyConfig(logCfg)
	if err != nil {
		// Fallback to a sane default
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(logCfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs to our logger
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{DataDir: opts.DataDir, Config: cfg, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	engine := rt.Engine()
	if cfg.RecoverOnStart {
		if err := engine.InitFromScan(sctx); err != nil {
			return err
		}
	}

	procLogger.Info("Starting ringlog server",
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("image", rt.Config().ImagePath),
		logpkg.Uint32("capacity", cfg.Device.Capacity),
		logpkg.Uint32("block_size", cfg.Device.BlockSize),
		logpkg.Bool("recovered", cfg.RecoverOnStart),
		logpkg.Uint32("cursor", engine.Position()),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format),
	)

	hsrv := httpserver.New(rt, procLogger.With(logpkg.Component("http")))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, cfg.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	if cfg.Producer.Enabled {
		prod, err := telemetry.New(engine, telemetry.Options{
			Source:   telemetry.NewSimSource(cfg.Producer.SourceName),
			Interval: time.Duration(cfg.Producer.IntervalMs) * time.Millisecond,
			Logger:   procLogger.With(logpkg.Component("telemetry")),
		})
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = prod.Run(sctx)
		}()
	}

	if cfg.Monitor.Enabled {
		mon := status.NewMonitor(rt.Collector(),
			time.Duration(cfg.Monitor.IntervalMs)*time.Millisecond,
			procLogger.With(logpkg.Component("status")))
		wg.Add(1)
		go func() {
			defer wg.Done()
			mon.Run(sctx)
		}()
	}

	<-sctx.Done()
	// Stop the listener before the runtime so in-flight handlers don't
	// race a closed device.
	hsrv.Close()
	wg.Wait()
	return nil
}
