// Command gvmcli is a command-line client for the vulnerability manager
// and its scanner daemon.
package main

import "github.com/anstrom/gvmclient/cmd/cli"

// Build information, set by ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
