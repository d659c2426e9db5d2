// Command podnet validates, converts and stores pod network designs.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"podnet/internal/config"
	"podnet/internal/domain"
)

const usage = `usage: podnet [-config path] <command> [flags] [args]

commands:
  validate <doc>                 load a design and report its contents
  convert  [-to fmt] <doc> [out] re-encode a design (json, yaml, ansible)
  segments <doc>                 list hosts grouped by shared networks
  prefill  [-to fmt] <file>      build a design from a prefill document
  discover [-targets cidr,...]   scan with nmap and print a prefill document
  snapshot save|load|list|delete manage stored designs
  watch    <doc>                 revalidate a design whenever it changes
`

func main() {
	configPath := flag.String("config", "", "config file path")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, used, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "podnet: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	defer logger.Sync()
	if used != "" {
		logger.Debug("config loaded", zap.String("path", used))
	}

	app := &app{cfg: cfg, logger: logger, out: os.Stdout}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var runErr error
	switch cmd {
	case "validate":
		runErr = app.validate(args)
	case "convert":
		runErr = app.convert(args)
	case "segments":
		runErr = app.segments(args)
	case "prefill":
		runErr = app.prefill(args)
	case "discover":
		runErr = app.discover(args)
	case "snapshot":
		runErr = app.snapshot(args)
	case "watch":
		runErr = app.watch(args)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if runErr != nil {
		logger.Error("command failed",
			zap.String("command", cmd),
			zap.String("reason", domain.ReasonCode(runErr)),
			zap.Error(runErr))
		fmt.Fprintf(os.Stderr, "podnet %s: %s\n  %v\n", cmd, domain.UserMessage(runErr), runErr)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LoggingConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)
	// Command output owns stdout.
	zapConfig.OutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		panic("Failed to create logger: " + err.Error())
	}

	return logger
}
