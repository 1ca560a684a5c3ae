package main

import (
	"slices"

	"github.com/urfave/cli/v3"
)

// getCommands returns every CLI command grouped as system, key and user commands.
func getCommands(version string) []*cli.Command {
	return slices.Concat(
		getSystemCommands(version),
		getKeyCommands(),
		getAuthCommands(),
	)
}
