package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	clientcmd "github.com/mgale/MemQueue/internal/cmd/client"
	serverrun "github.com/mgale/MemQueue/internal/cmd/server"
	cfgpkg "github.com/mgale/MemQueue/internal/config"
	logpkg "github.com/mgale/MemQueue/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// Respect MEMQUEUE_LOG_LEVEL for both CLI and server start output.
	level := os.Getenv("MEMQUEUE_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "memqueue",
		Short: "Memqueue CLI",
		Long:  "Memqueue is a message queue layered over a key/value cache. This CLI manages the server and basic queue operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start memqueue server (HTTP API)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			httpAddr, _ := cmd.Flags().GetString("http")
			backend, _ := cmd.Flags().GetString("backend")
			endpoints, _ := cmd.Flags().GetString("endpoints")
			autodelete, _ := cmd.Flags().GetBool("autodelete")
			clientLag, _ := cmd.Flags().GetInt("client-lag")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if backend != "" {
				cfg.Backend = backend
			}
			if endpoints != "" {
				cfg.Endpoints = strings.Split(endpoints, ",")
			}
			if cmd.Flags().Changed("autodelete") {
				cfg.AutoDelete = autodelete
			}
			if cmd.Flags().Changed("client-lag") {
				cfg.ClientLagSeconds = clientLag
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
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
	serverStartCmd.Flags().String("config", "", "Path to JSON config file")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("backend", "", "Cache backend: memcache|redis|pebble|memory")
	serverStartCmd.Flags().String("endpoints", "", "Comma-separated cache endpoints (host:port)")
	serverStartCmd.Flags().Bool("autodelete", false, "Delete messages after first read")
	serverStartCmd.Flags().Int("client-lag", 0, "Seconds a client may lag before fast-forwarding to newest")
	serverStartCmd.Flags().String("data-dir", "", "Data directory for the pebble backend (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("log-level", os.Getenv("MEMQUEUE_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("MEMQUEUE_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// queue commands
	rootCmd.AddCommand(clientcmd.NewQueueCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewClientIDCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("MEMQUEUE_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
