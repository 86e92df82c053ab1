package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/localops/copilot/types"
)

// VersionCommand reports the canonical contract version shared by the
// control API, worker, and CLI.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("localopsd %s (commit: %s)\n", types.Version, commit)
			return nil
		},
	}
}
