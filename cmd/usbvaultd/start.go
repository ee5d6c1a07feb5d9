package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rivergate/usbvault/cmd"
	"github.com/rivergate/usbvault/pkg/service"
)

// startMain is the entry point for the start command. It runs the
// engine in the foreground until a termination signal arrives or a
// tick fails, then shuts down cleanly.
func startMain(_ *cobra.Command, _ []string) error {
	engine, err := buildEngine(&startConfiguration.commonFlags)
	if err != nil {
		return err
	}

	terminationSignals := make(chan os.Signal, 1)
	signal.Notify(terminationSignals, cmd.TerminationSignals...)

	if err := engine.Start(); err != nil {
		return fmt.Errorf("unable to start ingestion engine: %w", err)
	}

	printer := &cmd.StatusLinePrinter{}

	var index uint64
	failed := make(chan error, 1)
	go func() {
		for {
			status, nextIndex, err := engine.WaitForStateChange(context.Background(), index)
			if err != nil {
				return
			}
			index = nextIndex
			printer.Print(fmt.Sprintf("Status: %s", status))
			if status == service.StatusFailed {
				failed <- fmt.Errorf("ingestion engine failed")
				return
			}
		}
	}()

	select {
	case s := <-terminationSignals:
		printer.Clear()
		fmt.Fprintln(os.Stderr, "Received termination signal:", s)
	case err := <-failed:
		printer.Clear()
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		engine.Stop(stopCtx)
		return err
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return engine.Stop(stopCtx)
}

// startCommand is the start command.
var startCommand = &cobra.Command{
	Use:          "start",
	Short:        "Start the ingestion engine and run it in the foreground",
	Args:         cmd.DisallowArguments,
	RunE:         startMain,
	SilenceUsage: true,
}

var startConfiguration struct {
	commonFlags
	help bool
}

func init() {
	flags := startCommand.Flags()
	flags.SortFlags = false
	startConfiguration.commonFlags.register(flags)
	flags.BoolVarP(&startConfiguration.help, "help", "h", false, "Show help information")
}
