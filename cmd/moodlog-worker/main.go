package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"moodlog/internal/amqp"
	"moodlog/internal/cli"
	"moodlog/internal/config"
	applog "moodlog/internal/log"
	"moodlog/internal/store/google"
	"moodlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting moodlog-worker")

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sheets, err := google.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheets, cfg.SyncBatchSize)
	scheduler := cron.New()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		// Stop returns a context that is done once running jobs finish.
		<-scheduler.Stop().Done()
	})

	if _, err := syncWorker.Schedule(ctx, scheduler, cfg.SyncCron); err != nil {
		logger.Error("Failed to schedule sync sweep", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeEntrySync(gctx, syncWorker.HandleSyncMessage)
	})
	g.Go(func() error {
		// Entries stored while the worker was down are still pending.
		if err := syncWorker.StartupSyncCheck(gctx); err != nil {
			logger.Error("Failed startup sync check", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		<-scheduler.Stop().Done()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
