package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/pkg/core/tours"
	"github.com/jakechorley/tour-desk/pkg/db"
)

// WatchToursCmd creates the watchTours command
func WatchToursCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchTours",
		Short: "Keep the tour list live and print it after every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if metricsAddr != "" {
				server := serveMetrics(app, metricsAddr)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					server.Shutdown(shutdownCtx)
				}()
			}

			var printMu sync.Mutex
			c := app.NewController(tours.WithChangeHandler(func(c *tours.Controller) tours.ChangeHandler {
				refetch := tours.FullRefetch(c)
				return tours.ChangeFunc(func(ctx context.Context, event db.ChangeEvent) {
					refetch.HandleChange(ctx, event)
					if ctx.Err() != nil {
						return
					}
					printMu.Lock()
					defer printMu.Unlock()
					fmt.Fprintf(app.Out, "\n[%s] %s %s on %s\n",
						time.Now().Format("15:04:05"), event.Operation, event.RowID, event.Table)
					printTours(app.Out, c.Tours())
				})
			}))

			mount(ctx, app, c)
			defer c.Stop()

			printMu.Lock()
			printTours(app.Out, c.Tours())
			printMu.Unlock()
			fmt.Fprintf(app.Out, "Watching %v for changes (Ctrl+C to stop)\n", app.Cfg.WatchTables)

			<-ctx.Done()
			app.Logger.Info("Stopping watch")
			return nil
		},
	}

	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func serveMetrics(app *AppContext, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		app.Logger.Info("Serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return server
}
