package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rivergate/usbvault/cmd"
	"github.com/rivergate/usbvault/pkg/ingest"
)

// statusMain starts the engine long enough to load its persisted device
// and fingerprint history, prints a snapshot, and stops it -- see
// pause.go for why this doesn't reach across to a separately running
// instance.
func statusMain(_ *cobra.Command, _ []string) error {
	engine, err := buildEngine(&statusConfiguration.commonFlags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := awaitRunning(ctx, engine); err != nil {
		return err
	}

	snapshot := engine.Snapshot()

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := engine.Stop(stopCtx); err != nil {
		return fmt.Errorf("unable to stop ingestion engine: %w", err)
	}

	printSnapshot(snapshot)

	return nil
}

func printSnapshot(snapshot ingest.Snapshot) {
	fmt.Println("Work path:", snapshot.WorkPath)
	fmt.Println("Queue depth:", snapshot.QueueDepth)
	fmt.Println("Fingerprint index size:", snapshot.IndexSize)

	switch snapshot.LoadLevel.String() {
	case "LOW":
		color.Green("Load: %s\n", snapshot.LoadLevel)
	case "MEDIUM":
		color.Yellow("Load: %s\n", snapshot.LoadLevel)
	default:
		color.Red("Load: %s\n", snapshot.LoadLevel)
	}

	if len(snapshot.Devices) == 0 {
		fmt.Println("Devices: none seen")
		return
	}
	fmt.Println("Devices:")
	for _, d := range snapshot.Devices {
		label := d.Label
		if label == "" {
			label = "(unlabeled)"
		}
		fmt.Printf("\t%s\t%s\t%s\n", d.Serial, label, d.State)
	}
}

var statusCommand = &cobra.Command{
	Use:          "status",
	Short:        "Start an ingestion engine, print a snapshot of its state, and stop it",
	Args:         cmd.DisallowArguments,
	RunE:         statusMain,
	SilenceUsage: true,
}

var statusConfiguration struct {
	commonFlags
	help bool
}

func init() {
	flags := statusCommand.Flags()
	flags.SortFlags = false
	statusConfiguration.commonFlags.register(flags)
	flags.BoolVarP(&statusConfiguration.help, "help", "h", false, "Show help information")
}
