package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MarkoPoloResearchLab/bankd/internal/actor"
	"github.com/MarkoPoloResearchLab/bankd/internal/httpapi"
	"github.com/MarkoPoloResearchLab/bankd/internal/server"
)

const (
	flagListenAddr           = "listen-addr"
	flagHTTPListenAddr       = "http-listen-addr"
	flagAllowedOrigins       = "allowed-origins"
	flagLogLevel             = "log-level"
	configKeyListenAddr      = "listen_addr"
	configKeyHTTPListenAddr  = "http_listen_addr"
	configKeyAllowedOrigins  = "allowed_origins"
	configKeyLogLevel        = "log_level"
	defaultTCPListenAddr     = ":1337"
	defaultHTTPListenAddress = ""
	defaultLogLevel          = "info"
)

type runtimeConfig struct {
	ListenAddr     string
	HTTPListenAddr string
	AllowedOrigins string
	LogLevel       string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bankd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "bankd",
		Short:         "In-memory bank ledger server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, defaultTCPListenAddr, "TCP listen address for the line protocol")
	cmd.Flags().String(flagHTTPListenAddr, defaultHTTPListenAddress, "HTTP listen address for the JSON facade (empty disables it)")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated CORS origins for the HTTP facade")
	cmd.Flags().String(flagLogLevel, defaultLogLevel, "minimum log level (debug, info, warn, error)")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix("BANKD")
	viper.AutomaticEnv()

	if err := viper.BindPFlag(configKeyListenAddr, cmd.Flags().Lookup(flagListenAddr)); err != nil {
		return err
	}
	if err := viper.BindPFlag(configKeyHTTPListenAddr, cmd.Flags().Lookup(flagHTTPListenAddr)); err != nil {
		return err
	}
	if err := viper.BindPFlag(configKeyAllowedOrigins, cmd.Flags().Lookup(flagAllowedOrigins)); err != nil {
		return err
	}
	if err := viper.BindPFlag(configKeyLogLevel, cmd.Flags().Lookup(flagLogLevel)); err != nil {
		return err
	}

	cfg.ListenAddr = viper.GetString(configKeyListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultTCPListenAddr
	}
	cfg.HTTPListenAddr = viper.GetString(configKeyHTTPListenAddr)
	cfg.AllowedOrigins = viper.GetString(configKeyAllowedOrigins)
	cfg.LogLevel = viper.GetString(configKeyLogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(parsed)
	return loggerConfig.Build()
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ledgerActor := actor.New(logger)
	go ledgerActor.Run(ctx)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	errCh := make(chan error, 2)
	tcpServer := server.New(ledgerActor, logger)
	go func() {
		errCh <- tcpServer.Serve(ctx, listener)
	}()

	if cfg.HTTPListenAddr != "" {
		httpConfig := httpapi.Config{
			ListenAddr:     cfg.HTTPListenAddr,
			AllowedOrigins: httpapi.ParseAllowedOrigins(cfg.AllowedOrigins),
		}
		go func() {
			errCh <- httpapi.Run(ctx, ledgerActor, httpConfig, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
		if serveErr := <-errCh; serveErr != nil {
			return serveErr
		}
		return nil
	case serveErr := <-errCh:
		return serveErr
	}
}
