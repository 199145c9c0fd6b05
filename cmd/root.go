package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teklab/tekladoc/internal/config"
	"github.com/teklab/tekladoc/internal/fallback"
	"github.com/teklab/tekladoc/internal/index"
	"github.com/teklab/tekladoc/internal/mcp"
	"github.com/teklab/tekladoc/internal/resolve"
	"github.com/teklab/tekladoc/internal/store"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "tekladoc",
	Short: "Tekla Structures API documentation MCP server",
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(classCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(statsCmd)

	cobra.OnInitialize(setupLogging)
}

// setupLogging sends structured logs to stderr; stdout belongs to the MCP
// stdio transport.
func setupLogging() {
	applyLogging(os.Stderr)
}

func applyLogging(out io.Writer) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

// serveLog opens the on-disk log file so serve-mode diagnostics survive
// hosts that swallow stderr.
func serveLog() *os.File {
	path := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("log file unavailable", "path", path, "error", err)
		return nil
	}
	return f
}

// buildEngine assembles the query engine from the persisted dataset and
// the configured fallback.
func buildEngine(cfg *config.Config) (*resolve.Engine, error) {
	st := store.Load(cfg.DataDir)

	idx, err := index.Build(st.Projection())
	if err != nil {
		return nil, fmt.Errorf("building search index: %w", err)
	}

	var remote fallback.Client
	if cfg.Fallback.Enabled {
		remote = fallback.NewHTTPClient(cfg.Fallback.BaseURL, config.PageCacheDir())
	}

	engine := resolve.New(st, idx, remote, resolve.DirPageReader{Dir: cfg.DocsDir})
	engine.SetDefaultLimit(cfg.Search.DefaultLimit)
	return engine, nil
}

func runServe(cmd *cobra.Command, args []string) {
	if f := serveLog(); f != nil {
		defer f.Close()
		applyLogging(io.MultiWriter(os.Stderr, f))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("starting engine: %v", err)
	}

	server := mcp.NewServer(engine, cfg.DocsDir)

	errCh := make(chan error)
	go func() { errCh <- server.Run() }()

	if err := waitForSignal(errCh); err != nil {
		log.Fatalf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func waitForSignal(errCh chan error) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		slog.Info("received signal", "signal", sig.String())
		return nil
	case err := <-errCh:
		return err
	}
}
