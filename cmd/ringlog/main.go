package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientcmd "github.com/rzbill/ringlog/internal/cmd/client"
	serverrun "github.com/rzbill/ringlog/internal/cmd/server"
	cfgpkg "github.com/rzbill/ringlog/internal/config"
	logpkg "github.com/rzbill/ringlog/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// initialize logger for CLI
	// Respect RINGLOG_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("RINGLOG_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "ringlog",
		Short: "ringlog CLI",
		Long:  "ringlog is a circular log daemon over a flash image. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the ringlog server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			image, _ := cmd.Flags().GetString("image")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			noRecover, _ := cmd.Flags().GetBool("no-recover")

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := cfgpkg.Default()
			if configPath != "" {
				var err error
				cfg, err = cfgpkg.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			if image != "" {
				cfg.ImagePath = image
			}
			if noRecover {
				cfg.RecoverOnStart = false
			}
			if logLevel != "" {
				_ = os.Setenv("RINGLOG_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("RINGLOG_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:  dataDir,
				HTTPAddr: httpAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default :8080)")
	serverStartCmd.Flags().String("config", "", "Config file (JSON or YAML)")
	serverStartCmd.Flags().String("image", "", "Flash image file (default <data-dir>/flash.img)")
	serverStartCmd.Flags().String("log-level", os.Getenv("RINGLOG_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("RINGLOG_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().Bool("no-recover", false, "Skip the cursor recovery scan at startup")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// log, device, and status commands
	rootCmd.AddCommand(clientcmd.NewLogCommand(clientcmd.DefaultBaseURL))
	rootCmd.AddCommand(clientcmd.NewDeviceCommand(clientcmd.DefaultBaseURL))
	rootCmd.AddCommand(clientcmd.NewStatusCommand(clientcmd.DefaultBaseURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
