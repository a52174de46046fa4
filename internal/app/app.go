// Package app wires configuration, the news pipeline, the Telegram bot and the
// background watchers into one process.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/pabot/internal/bot"
	"github.com/deusflow/pabot/internal/config"
	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/mail"
	"github.com/deusflow/pabot/internal/session"
	"github.com/deusflow/pabot/internal/sheets"
	"github.com/deusflow/pabot/internal/telegram"
)

// Run starts the bot and blocks until ctx is cancelled or a component fails.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	pipeline, err := BuildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info("Authorized on Telegram", "bot", api.Self.UserName)

	client := telegram.NewClient(api)
	deliverer := telegram.NewDeliverer(client, cfg.ChunkSize, cfg.ChunkPause)
	sess := session.New(cfg.AllowedUserID)
	notifier := bot.NewNotifier(sess, deliverer)

	var mailbox mail.Mailbox
	if cfg.MailEnabled() {
		mailbox = mail.NewGmail(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	} else {
		logger.Info("Gmail disabled: credentials file not found", "path", cfg.GoogleCredentialsFile)
	}

	var table sheets.Table
	if cfg.SheetsEnabled() {
		sheet, err := sheets.NewGoogleSheet(ctx, cfg.SheetsServiceAccountFile, cfg.SheetID, cfg.SheetRange)
		if err != nil {
			logger.Warn("Sheets disabled", "err", err)
		} else {
			table = sheet
		}
	} else {
		logger.Info("Sheets disabled: SHEET_ID or service account file missing")
	}

	dispatcher := bot.NewDispatcher(bot.Deps{
		Messenger:     client,
		Deliverer:     deliverer,
		Digests:       pipeline.Service,
		Catalog:       pipeline.Catalog,
		Mailbox:       mailbox,
		Table:         table,
		Session:       sess,
		AllowedUserID: cfg.AllowedUserID,
		Window:        cfg.Window(),
	})
	dispatcher.RegisterCommands()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.EnableHTTPMonitoring {
		g.Go(func() error {
			return startMonitoringServer(gctx, cfg.MonitoringPort, pipeline.Budget)
		})
	}

	if mailbox != nil {
		watcher := mail.NewWatcher(mailbox, notifier, cfg.MailQuery)
		g.Go(func() error {
			watcher.Run(gctx, cfg.MailInterval)
			return nil
		})
	}

	if table != nil {
		watcher := sheets.NewWatcher(table, notifier)
		g.Go(func() error {
			watcher.Run(gctx, cfg.SheetsInterval)
			return nil
		})
	}

	g.Go(func() error {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)

		go func() {
			<-gctx.Done()
			api.StopReceivingUpdates()
		}()

		logger.Info("Bot started")
		return dispatcher.Run(gctx, updates)
	})

	return g.Wait()
}
