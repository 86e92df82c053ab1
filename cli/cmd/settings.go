package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/localops/copilot/config"
)

// loadSettings resolves Settings the same way every subcommand does:
// environment defaults, optionally overlaid by --config.
func loadSettings(c *cli.Context) (config.Settings, error) {
	path := c.String("config")
	if path == "" {
		return config.FromEnv(), nil
	}
	return config.Load(path)
}
