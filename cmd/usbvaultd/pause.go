package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rivergate/usbvault/cmd"
)

// pauseMain starts the engine, pauses it, reports the resulting status,
// and stops it. There is no separate running usbvaultd process for this
// invocation to reach across to (see main.go), so pause demonstrates the
// transition rather than acting on an already-running instance.
func pauseMain(_ *cobra.Command, _ []string) error {
	engine, err := buildEngine(&pauseConfiguration.commonFlags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := awaitRunning(ctx, engine); err != nil {
		return err
	}

	if err := engine.Pause(); err != nil {
		return fmt.Errorf("unable to pause ingestion engine: %w", err)
	}
	fmt.Println(engine.Status())

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	return engine.Stop(stopCtx)
}

var pauseCommand = &cobra.Command{
	Use:          "pause",
	Short:        "Pause discovery of new work on a freshly started ingestion engine",
	Args:         cmd.DisallowArguments,
	RunE:         pauseMain,
	SilenceUsage: true,
}

var pauseConfiguration struct {
	commonFlags
	help bool
}

func init() {
	flags := pauseCommand.Flags()
	flags.SortFlags = false
	pauseConfiguration.commonFlags.register(flags)
	flags.BoolVarP(&pauseConfiguration.help, "help", "h", false, "Show help information")
}
