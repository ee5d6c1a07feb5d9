package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rivergate/usbvault/cmd"
)

// resumeMain starts the engine, pauses then resumes it, reports the
// resulting status, and stops it -- see pause.go for why this doesn't
// reach across to a separately running instance.
func resumeMain(_ *cobra.Command, _ []string) error {
	engine, err := buildEngine(&resumeConfiguration.commonFlags)
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
	if err := engine.Resume(); err != nil {
		return fmt.Errorf("unable to resume ingestion engine: %w", err)
	}
	fmt.Println(engine.Status())

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	return engine.Stop(stopCtx)
}

var resumeCommand = &cobra.Command{
	Use:          "resume",
	Short:        "Resume discovery of new work on a freshly paused ingestion engine",
	Args:         cmd.DisallowArguments,
	RunE:         resumeMain,
	SilenceUsage: true,
}

var resumeConfiguration struct {
	commonFlags
	help bool
}

func init() {
	flags := resumeCommand.Flags()
	flags.SortFlags = false
	resumeConfiguration.commonFlags.register(flags)
	flags.BoolVarP(&resumeConfiguration.help, "help", "h", false, "Show help information")
}
