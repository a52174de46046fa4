package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deusflow/pabot/internal/app"
	"github.com/deusflow/pabot/internal/config"
	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/news"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pabot",
	Short: "Personal assistant Telegram bot",
	Long: `pabot is a personal Telegram assistant: recent-news digests per category,
Gmail notifications and a shopping list kept in Google Sheets.

Example usage:
  pabot                        # Run the bot (same as "pabot serve")
  pabot digest ai_news         # Build one digest and print it
  pabot categories             # List configured news categories`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		var err error
		cfg, err = config.Load()
		logger.Init(cfg.Debug, cfg.LogFormat)
		if err != nil && cmd.Name() != "categories" {
			return fmt.Errorf("configuration error: %w", err)
		}
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and background watchers",
	RunE:  runServe,
}

var digestCmd = &cobra.Command{
	Use:   "digest <category>",
	Short: "Build one news digest and print it to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runDigest,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List configured news categories",
	RunE:  runCategories,
}

func init() {
	digestCmd.Flags().Int("hours", 0, "recency window in hours (default WINDOW_HOURS)")
	rootCmd.AddCommand(serveCmd, digestCmd, categoriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("pabot failed", "err", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	logger.Info("Starting pabot", "provider", cfg.LLMProvider, "window_hours", cfg.WindowHours)
	return app.Run(ctx, cfg)
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	pipeline, err := app.BuildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	category, ok := pipeline.Catalog.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown category %q", args[0])
	}

	window := cfg.Window()
	if hours, _ := cmd.Flags().GetInt("hours"); hours > 0 {
		window = time.Duration(hours) * time.Hour
	}

	digest := pipeline.Service.RunCategoryDigest(ctx, category, window)
	fmt.Fprintln(cmd.OutOrStdout(), digest.Body)
	return nil
}

func runCategories(cmd *cobra.Command, args []string) error {
	categories, err := news.LoadCategories(cfg.SourcesConfigPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, c := range categories {
		fmt.Fprintf(out, "%s\t%s\t%d sources\n", c.ID, c.Label, len(c.Sources))
		for _, s := range c.Sources {
			kind := "page"
			if s.Feed {
				kind = "feed"
			}
			fmt.Fprintf(out, "  - [%s] %s\n", kind, s.URL)
		}
	}
	return nil
}
