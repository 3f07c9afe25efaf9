package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/regpulse/regpulse/core"
	"github.com/regpulse/regpulse/core/feed"
	"github.com/regpulse/regpulse/core/store"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/internal/server"
	"github.com/regpulse/regpulse/internal/source"
	"github.com/regpulse/regpulse/internal/telemetry"
	"github.com/spf13/cobra"
)

// serveCmd runs the sync controller and the JSON API until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registration metrics as a JSON API",
	Long: `Keep the event snapshot fresh by polling the source every --poll-interval and
serve every view over HTTP.

Endpoints:
  GET  /api/v1/status
  GET  /api/v1/events?product=&quarter=&sort=&dir=
  GET  /api/v1/summary
  GET  /api/v1/aggregates/{totals|products|quarters}
  GET  /api/v1/goals
  GET  /api/v1/ranking
  GET  /api/v1/insights
  GET  /api/v1/check
  POST /api/v1/refresh
  GET  /metrics
  GET  /healthz

A failed poll keeps serving the last good snapshot, marked stale after the first
failure and error after the next.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger()
		src, closeSrc, err := source.Open(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()

		metrics := telemetry.NewMetrics()
		st := store.New(src.Describe())
		st.Select(cfg.Selection)
		ctrl := feed.New(src, st,
			feed.WithInterval(cfg.PollInterval),
			feed.WithLogger(logger),
			feed.WithObserver(metrics),
		)
		defer func() {
			ctrl.Close()
			ctrl.Wait()
		}()
		go ctrl.Run(ctx)

		api := server.NewWebAPI(logger, server.Config{
			Addr: cfg.Addr,
			Dependencies: server.Dependencies{
				Engine:    core.NewEngine(st, cfg.Goals, cfg.Clock()),
				Refresher: ctrl,
				Metrics:   metrics,
			},
		})
		if err := api.Start(ctx); err != nil {
			contract.LogWarn("Server stopped with error", err)
			return err
		}
		return nil
	},
}
