// Command usbvaultd is the demonstration entry point for the ingestion
// engine (pkg/ingest): a small cobra command tree that constructs an
// Engine against a --work-path and --config flag pair and drives its
// lifecycle, mirroring the shape of the teacher's cmd/mutagen without
// its remote-endpoint/SSH/Docker machinery.
//
// Unlike that daemon, usbvaultd never forks into the background and
// never talks to a separate running instance over IPC: spec's non-goals
// exclude multi-process coordination, so every subcommand here
// constructs its own Engine, drives it through the lifecycle transition
// its name describes, reports the result, and exits. start is the one
// subcommand meant for long-lived foreground use; pause, resume, stop,
// and status exist to exercise and report on that same API surface in a
// single process, since there is no second process for them to reach
// across to.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rivergate/usbvault/cmd"
)

func rootMain(command *cobra.Command, _ []string) {
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "usbvaultd",
	Short: "usbvaultd ingests files from removable storage, deduplicating and copying them into a managed work area",
	Run:   rootMain,
}

var rootConfiguration struct {
	help bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		startCommand,
		pauseCommand,
		resumeCommand,
		stopCommand,
		statusCommand,
	)
}

func main() {
	cmd.HandleTerminalCompatibility()

	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
