package cmd

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/localops/copilot/cli/apiclient"
	"github.com/localops/copilot/cli/tui"
)

// WatchCommand opens a live, read-only view of a single run, polling the
// control API until the run reaches a terminal status or the user quits.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch a run's steps live",
		ArgsUsage: "<run_id>",
		Flags:     []cli.Flag{ConfigFlag, APIBaseURLFlag, APIKeyFlag},
		Action:    watchAction,
	}
}

func watchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: localopsd watch <run_id>", 1)
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return cli.Exit("invalid run_id: "+c.Args().First(), 1)
	}

	settings, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	baseURL := settings.APIBaseURL
	if v := c.String("api-base-url"); v != "" {
		baseURL = v
	}
	apiKey := settings.APIKey
	if v := c.String("api-key"); v != "" {
		apiKey = v
	}

	client := apiclient.New(baseURL, apiKey)
	if err := tui.RunWatchTUI(client, runID); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
