package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/iwvelando/selic-window/internal/config"
	"github.com/iwvelando/selic-window/internal/server"
	"github.com/iwvelando/selic-window/internal/window"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/iwvelando/selic-window/pkg/output"
	"github.com/iwvelando/selic-window/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	// Reports go to stdout, so logs default to stderr.
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a single simulation")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	maxRequestSize := flag.String("max-request-size", "", "request body limit override for -serve (e.g. 512K, 1M)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var code int
	if *serve {
		code = runServer(ctx, conf, *serverConfigLocation, *maxRequestSize, *logLevel)
	} else {
		code = runOnce(ctx, conf, *outputFormatFlag, *logLevel)
	}
	stop()
	os.Exit(code)
}

func runOnce(ctx context.Context, conf *config.Configuration, outputFormatFlag, logLevel string) int {
	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return 1
	}

	params, warnings, err := conf.ToParameters()
	if err != nil {
		logger.Error("invalid configuration", zap.String("op", "main"), zap.Error(err))
		return 1
	}
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	runner, cleanup, err := buildRunner(ctx, logger, conf)
	if err != nil {
		logger.Error("failed to initialize rate sources", zap.String("op", "main"), zap.Error(err))
		return 1
	}
	defer cleanup()

	result, err := runner.Run(ctx, params)
	if err != nil && !errors.Is(err, window.ErrNoWindowFound) {
		logger.Error("failed to run simulation", zap.String("op", "main"), zap.Error(err))
		return 1
	}

	if err := output.Write(os.Stdout, outputFormat, result); err != nil {
		logger.Error("failed to write output", zap.String("op", "main"), zap.Error(err))
		return 1
	}
	return 0
}

func runServer(ctx context.Context, conf *config.Configuration, serverConfigLocation, maxRequestSize, logLevel string) int {
	serverConf, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", serverConfigLocation, err)
		return 1
	}
	if err := applyRequestSizeOverride(serverConf, maxRequestSize); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid -max-request-size\", \"error\": \"%v\"}\n", err)
		return 1
	}

	loggingConfig := conf.Logging
	if serverConf.Logging != (config.LoggingConfig{}) {
		loggingConfig = serverConf.Logging
	}
	logger, err := initializeLogger(loggingConfig, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	runner, cleanup, err := buildRunner(ctx, logger, conf)
	if err != nil {
		logger.Error("failed to initialize rate sources", zap.String("op", "main"), zap.Error(err))
		return 1
	}
	defer cleanup()

	if err := server.NewServer(logger, serverConf, runner, version).Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.String("op", "main"), zap.Error(err))
		return 1
	}
	return 0
}

// applyRequestSizeOverride replaces the configured request body limit when
// override is set.
func applyRequestSizeOverride(serverConf *server.Config, override string) error {
	if override == "" {
		return nil
	}
	size, err := server.ParseSize(override)
	if err != nil {
		return err
	}
	serverConf.SetRequestSizeBytes(size)
	return nil
}
