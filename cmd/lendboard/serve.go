package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/board"
	"github.com/oakmontcap/lendboard/internal/client"
	"github.com/oakmontcap/lendboard/internal/config"
	"github.com/oakmontcap/lendboard/internal/events"
	"github.com/oakmontcap/lendboard/internal/feed"
	"github.com/oakmontcap/lendboard/internal/server"
	"github.com/oakmontcap/lendboard/internal/store/postgres"
	boardsync "github.com/oakmontcap/lendboard/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the board server",
	// Override PersistentPreRunE so the serve path never touches remotes.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		backend := client.NewHTTPClient(cfg.BackendURL, cfg.BackendToken)

		var feeds feed.Source
		if cfg.FeedURL != "" {
			feeds = feed.NewHTTPSource(cfg.FeedURL)
			logger.Info("feeds enabled", "url", cfg.FeedURL)
		} else {
			logger.Info("feeds disabled (LENDBOARD_FEED_URL not set)")
		}

		// Events fan out to the SSE hub and, when configured, to NATS.
		hub := server.NewHub()
		publisher := events.Publisher(hub)
		if cfg.NATSURL != "" {
			natsPub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = events.Multi(natsPub, hub)
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			logger.Info("NATS events disabled (LENDBOARD_NATS_URL not set)")
		}

		b := board.New(board.Options{
			Backend:       backend,
			Feeds:         feeds,
			StatusAlias:   cfg.FeedStatusAlias,
			ScheduleAlias: cfg.FeedScheduleAlias,
			Store:         st,
			Publisher:     publisher,
		})

		// Initial load; the server still starts when the backend is down.
		if _, err := b.Refresh(context.Background()); err != nil {
			logger.Error("initial refresh failed", "err", err)
		}

		refreshCtx, stopRefresh := context.WithCancel(context.Background())
		defer stopRefresh()
		if cfg.RefreshInterval > 0 {
			go func() {
				ticker := time.NewTicker(cfg.RefreshInterval)
				defer ticker.Stop()
				for {
					select {
					case <-refreshCtx.Done():
						return
					case <-ticker.C:
						if _, err := b.Refresh(refreshCtx); err != nil && !errors.Is(err, board.ErrRefreshInProgress) {
							logger.Error("scheduled refresh failed", "err", err)
						}
					}
				}
			}()
			logger.Info("refresh loop started", "interval", cfg.RefreshInterval)
		}

		boardServer := server.New(b, st, hub)
		boardServer.Presence().StartReaper(nil)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: boardServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		var scheduler *boardsync.Scheduler
		if cfg.ExportInterval > 0 && cfg.ExportS3Bucket != "" {
			s3Dest, err := boardsync.NewS3Destination(
				context.Background(),
				cfg.ExportS3Bucket,
				cfg.ExportS3Key,
				cfg.ExportS3Region,
				cfg.ExportS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 export destination", "err", err)
			} else {
				scheduler = boardsync.NewScheduler(b, []boardsync.Destination{s3Dest}, cfg.ExportInterval, logger)
				scheduler.Start()
				logger.Info("export scheduler started",
					"interval", cfg.ExportInterval, "bucket", cfg.ExportS3Bucket, "key", cfg.ExportS3Key)
			}
		}

		logger.Info("lendboard server started", "http_addr", cfg.HTTPAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		stopRefresh()
		boardServer.Presence().Stop()

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("export scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
