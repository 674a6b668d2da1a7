package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/moorlog/moor/internal/cmd/client"
	serverrun "github.com/moorlog/moor/internal/cmd/server"
	cfgpkg "github.com/moorlog/moor/internal/config"
	pebblestore "github.com/moorlog/moor/internal/storage/pebble"
	logpkg "github.com/moorlog/moor/pkg/log"
)

func main() {
	// initialize logger for CLI
	// Respect MOOR_LOG_LEVEL for both CLI and server start output
	level := os.Getenv("MOOR_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "moor",
		Short: "Moor anchoring log CLI",
		Long:  "Moor is a single-binary append-only anchoring log. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start moor server (HTTP, optional Kafka relay)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			configPath, _ := cmd.Flags().GetString("config")
			kafkaBrokers, _ := cmd.Flags().GetString("kafka-brokers")
			kafkaTopic, _ := cmd.Flags().GetString("kafka-topic")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := cfgpkg.Default()
			if configPath != "" {
				loaded, err := cfgpkg.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			cfgpkg.FromEnv(&cfg)
			if kafkaBrokers != "" {
				cfg.KafkaBrokers = strings.Split(kafkaBrokers, ",")
			}
			if kafkaTopic != "" {
				cfg.KafkaTopic = kafkaTopic
			}
			if logLevel != "" {
				_ = os.Setenv("MOOR_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("MOOR_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("MOOR_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("MOOR_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().String("config", "", "Config file path (JSON)")
	serverStartCmd.Flags().String("kafka-brokers", os.Getenv("MOOR_KAFKA_BROKERS"), "Kafka brokers (comma-separated) to relay accepted records to")
	serverStartCmd.Flags().String("kafka-topic", "", "Kafka topic for the relay (default moor.anchors)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// anchor commands (implemented in internal/cmd/client)
	rootCmd.AddCommand(clientcmd.NewAnchorCommand(clientcmd.BaseURLFromEnv))

	// key commands
	rootCmd.AddCommand(clientcmd.NewKeyCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
