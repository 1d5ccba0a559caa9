package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-certidao-reader/internal/config"
	"github.com/a3tai/mcp-certidao-reader/internal/document"
	"github.com/a3tai/mcp-certidao-reader/internal/logging"
	"github.com/a3tai/mcp-certidao-reader/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *zap.SugaredLogger) int {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Infow("received signal, shutting down", "signal", sig.String())
		cancel()

		if err := <-serverErrCh; err != nil {
			logger.Errorw("server shutdown with error", "error", err)
			return 1
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Errorw("server error", "error", err)
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// runStdioMode handles stdio mode execution. The parent process controls the
// lifecycle; stdout belongs to the protocol so logs only go to stderr.
func runStdioMode(ctx context.Context, server *mcp.Server, logger *zap.SugaredLogger) int {
	if err := server.Run(ctx); err != nil {
		logger.Errorw("server error", "error", err)
		return 1
	}
	return 0
}

func run() int {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		if hints := errors.FlattenHints(err); hints != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hints)
		}
		return 2
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	logger.Debugw("starting", "config", cfg.String())

	service, err := document.NewService(cfg.MaxFileSize, cfg.CertificateDirectory, logger)
	if err != nil {
		logger.Errorw("failed to create document service", "error", err)
		return 1
	}

	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		logger.Errorw("failed to create MCP server", "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server, logger)
	}
	return runStdioMode(ctx, server, logger)
}

func main() {
	os.Exit(run())
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Certidão Reader\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
