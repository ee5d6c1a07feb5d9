package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rivergate/usbvault/cmd"
)

// stopMain starts the engine and then immediately stops it, reporting
// the resulting status -- see pause.go for why this doesn't reach across
// to a separately running instance.
func stopMain(_ *cobra.Command, _ []string) error {
	engine, err := buildEngine(&stopConfiguration.commonFlags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := awaitRunning(ctx, engine); err != nil {
		return err
	}

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := engine.Stop(stopCtx); err != nil {
		return fmt.Errorf("unable to stop ingestion engine: %w", err)
	}
	fmt.Println(engine.Status())

	return nil
}

var stopCommand = &cobra.Command{
	Use:          "stop",
	Short:        "Start and then cleanly stop an ingestion engine, saving its persisted state",
	Args:         cmd.DisallowArguments,
	RunE:         stopMain,
	SilenceUsage: true,
}

var stopConfiguration struct {
	commonFlags
	help bool
}

func init() {
	flags := stopCommand.Flags()
	flags.SortFlags = false
	stopConfiguration.commonFlags.register(flags)
	flags.BoolVarP(&stopConfiguration.help, "help", "h", false, "Show help information")
}
