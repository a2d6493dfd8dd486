package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/vito/lark/pkg/lsp"
)

// Config holds the application configuration
type Config struct {
	Debug      bool
	Extensions string
	LogFile    string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "lark",
		Short: "Lark language tooling",
		Long: `Lark is a configuration language with structural type inference.
This binary bundles its language server and a batch type checker.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.Extensions, "extensions", "", "Path to a TOML file of extra builtin functions")

	lspCmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdio",
		Example: `  # Run the language server (used by editor integrations)
  lark lsp

  # Log to a file instead of stderr
  lark lsp --log-file lark-lsp.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(cmd.Context(), cfg)
		},
	}
	lspCmd.Flags().StringVar(&cfg.LogFile, "log-file", "", "Path to log file (stderr if not specified)")

	checkCmd := &cobra.Command{
		Use:   "check [flags] file...",
		Short: "Type-check Lark source files",
		Example: `  # Check a single file
  lark check config.lark

  # Check several files with extra builtins
  lark check --extensions builtins.toml *.lark`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cfg, args)
		},
	}

	rootCmd.AddCommand(lspCmd, checkCmd)

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func runLSP(ctx context.Context, cfg Config) error {
	var logDest io.Writer
	if cfg.LogFile != "" {
		logFile, err := os.Create(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	} else {
		logDest = os.Stderr
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	logHandler := slog.NewTextHandler(logDest, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.InfoContext(ctx, "starting language server")

	handler := lsp.NewHandler(ctx)

	if cfg.Extensions != "" {
		cat, err := handler.Analysis().Catalog().LoadExtensions(cfg.Extensions)
		if err != nil {
			return fmt.Errorf("load extensions: %w", err)
		}
		handler.Analysis().SetCatalog(cat)

		go func() {
			if err := handler.Analysis().WatchExtensions(ctx, cfg.Extensions); err != nil && ctx.Err() == nil {
				logger.WarnContext(ctx, "extensions watcher stopped", "error", err)
			}
		}()
	}

	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})

	// Store server reference in handler for diagnostics pushes
	handler.SetServer(srv)

	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "language server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

func setupCheckLogging(cfg Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	})))
}
