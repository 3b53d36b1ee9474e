package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/gazette-ocr/internal/app"
	"github.com/joseph-ayodele/gazette-ocr/internal/common"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	app        *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "gazette",
		Short:         "Look up trade-registry gazette notices and read them with OCR",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (overrides CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")

	root.AddCommand(
		newSearchCmd(c),
		newExtractCmd(c),
		newOCRCmd(c),
		newBatchCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	if c.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", c.configPath); err != nil {
			return err
		}
	}
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	// stdout is reserved for results
	logger := app.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
