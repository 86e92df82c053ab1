package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/localops/copilot/artifact"
	"github.com/localops/copilot/log"
	"github.com/localops/copilot/orchestrator"
	"github.com/localops/copilot/queue"
	"github.com/localops/copilot/store"
	"github.com/localops/copilot/types"
)

// WorkerCommand drains the Redis task queue and runs each dequeued run
// through the orchestrator. It runs as a separate process from `serve`,
// so it forwards events to live subscribers over HTTP instead of
// publishing directly to the control API's in-process event bus.
func WorkerCommand() *cli.Command {
	return &cli.Command{
		Name:   "worker",
		Usage:  "Drain the task queue and execute runs",
		Flags:  []cli.Flag{ConfigFlag},
		Action: workerAction,
	}
}

func workerAction(c *cli.Context) error {
	settings, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger := log.NewLogger(&types.RunMeta{RunID: "worker"})

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

	emitter := orchestrator.NewHTTPEmitter(settings.APIBaseURL, settings.APIKey)
	orch := orchestrator.New(st, emitter, artifact.NewStore(settings.ArtifactRoot), settings.SandboxImage)

	if settings.S3Bucket != "" {
		mirrorCtx, mirrorCancel := context.WithTimeout(context.Background(), 10*time.Second)
		mirror, err := artifact.NewS3Mirror(mirrorCtx, artifact.S3Config{
			Bucket:       settings.S3Bucket,
			Prefix:       settings.S3Prefix,
			Region:       settings.S3Region,
			Endpoint:     settings.S3Endpoint,
			UsePathStyle: settings.S3UsePathStyle,
		})
		mirrorCancel()
		if err != nil {
			return cli.Exit(fmt.Sprintf("configuring s3 mirror: %v", err), 1)
		}
		orch.Mirror = mirror
		logger.Info("s3 artifact mirroring enabled", map[string]any{"bucket": settings.S3Bucket})
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	logger.Info("worker polling queue", map[string]any{"redis_url": settings.RedisURL})

	for {
		select {
		case <-stop:
			logger.Info("shutting down", nil)
			return nil
		default:
		}

		runID, ok, err := q.Dequeue(context.Background(), settings.DequeueTimeout.Duration)
		if err != nil {
			logger.Error("dequeue failed", map[string]any{"error": err.Error()})
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}

		logger.Info("executing run", map[string]any{"run_id": runID})
		if err := orch.Execute(context.Background(), runID); err != nil {
			logger.Error("run execution failed", map[string]any{"run_id": runID, "error": err.Error()})
		}
	}
}
