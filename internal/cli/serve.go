package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iurisrag/healthcheck/internal/httpapi"
	"github.com/iurisrag/healthcheck/internal/watch"
)

func newServeCmd(o *options) *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Re-evaluate on an interval and expose the latest report over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, cfg, logger, err := buildRunner(cmd, o, 0)
			if err != nil {
				return err
			}
			defer func() {
				_ = run.Close()
				_ = logger.Sync()
			}()

			// serve-mode alerting is the watcher's job
			watcher := &watch.Watcher{
				Eval:            run,
				Interval:        interval,
				Cooldown:        30 * time.Minute,
				AlertOnRecovery: true,
				Notifier:        run.Notifier,
				Logger:          logger,
			}
			run.Notifier = nil

			if addr == "" {
				addr = cfg.Addr
			}
			api := httpapi.NewServer(logger, watcher, cfg.APIKeys)
			srv := &http.Server{Addr: addr, Handler: api.Router()}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				logger.Info("serve_listen", zap.String("addr", addr))
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				err := watcher.Run(ctx)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
				return err
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 60*time.Second, "Delay between evaluation passes")
	return cmd
}
