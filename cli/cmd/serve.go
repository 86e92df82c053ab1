package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/localops/copilot/api"
	"github.com/localops/copilot/artifact"
	"github.com/localops/copilot/config"
	"github.com/localops/copilot/eventbus"
	"github.com/localops/copilot/log"
	"github.com/localops/copilot/queue"
	"github.com/localops/copilot/store"
	"github.com/localops/copilot/types"
)

// ServeCommand boots the control API: the Durable Store connection, the
// in-process event bus WebSocket subscribers attach to, and the HTTP
// router, then blocks until SIGINT/SIGTERM.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the control API and WebSocket event surface",
		Flags: []cli.Flag{
			ConfigFlag,
			&cli.StringFlag{Name: "addr", Usage: "Listen address", Value: ":8000"},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := log.NewLogger(&types.RunMeta{RunID: "serve"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Open(ctx, settings.DatabaseURL)
	cancel()
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening store: %v", err), 1)
	}
	defer st.Close()

	q, err := queue.New(queue.Config{URL: settings.RedisURL})
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening queue: %v", err), 1)
	}
	defer q.Close()

	srv := api.New(st, eventbus.NewBus(), artifact.NewStore(settings.ArtifactRoot), q, settings.APIKey)

	addr := c.String("addr")
	httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("control API listening", map[string]any{"addr": addr})
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return cli.Exit(fmt.Sprintf("serving: %v", err), 1)
	case <-sigCh:
		logger.Info("shutting down", nil)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpSrv.Shutdown(shutdownCtx)
}
