// Package cmd provides the localopsd binary's CLI commands.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for commands that talk to the control API.
var (
	// ConfigFlag points at an optional YAML settings overlay.
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to a YAML settings file overlaying environment defaults",
	}

	// APIBaseURLFlag overrides the control API base URL a client command
	// talks to.
	APIBaseURLFlag = &cli.StringFlag{
		Name:  "api-base-url",
		Usage: "Control API base URL",
	}

	// APIKeyFlag overrides the API key a client command authenticates with.
	APIKeyFlag = &cli.StringFlag{
		Name:  "api-key",
		Usage: "Control API key",
	}
)
