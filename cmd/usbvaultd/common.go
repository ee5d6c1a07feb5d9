package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/ingest"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/service"
)

// stopTimeout bounds how long a subcommand waits for the engine's
// component goroutines to exit during Stop before giving up on a clean
// shutdown.
const stopTimeout = 30 * time.Second

// commonFlags are bound into each subcommand's flag set in that
// subcommand's init function (cobra flag sets aren't shared across
// sibling commands, unlike persistent flags on a parent, and these
// subcommands have no other shared parent besides root).
type commonFlags struct {
	// workPath is the root directory under which ingested files are
	// copied. An empty value falls back to config.WorkPath's current
	// value (populated from --config, if given, or its built-in
	// default otherwise).
	workPath string
	// configPath, if non-empty, is loaded as a structured YAML
	// configuration export (see pkg/config.ImportYAML) before the
	// Engine is constructed.
	configPath string
}

func (f *commonFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.workPath, "work-path", "", "Root directory under which ingested files are copied")
	flags.StringVar(&f.configPath, "config", "", "Path to a structured YAML configuration export")
}

// buildEngine loads f.configPath into the configuration registry (if
// given), resolves the effective work path, and constructs an Engine
// against it.
func buildEngine(f *commonFlags) (*ingest.Engine, error) {
	if f.configPath != "" {
		if err := config.ImportYAML(config.Default(), f.configPath); err != nil {
			return nil, fmt.Errorf("unable to load configuration file: %w", err)
		}
	}

	workPath := f.workPath
	if workPath == "" {
		workPath = config.WorkPath.Get()
	}
	if workPath == "" {
		return nil, fmt.Errorf("no work path specified (use --work-path or set storage.work_path in --config)")
	}

	return ingest.New(workPath, logging.RootLogger.Sublogger("ingest"))
}

// awaitRunning starts the engine and blocks until it reaches RUNNING or
// FAILED, whichever comes first. pause, resume, stop, and status each
// need a running engine to act on before they can demonstrate their own
// transition.
func awaitRunning(ctx context.Context, engine *ingest.Engine) error {
	if err := engine.Start(); err != nil {
		return fmt.Errorf("unable to start ingestion engine: %w", err)
	}

	var index uint64
	for {
		status, nextIndex, err := engine.WaitForStateChange(ctx, index)
		if err != nil {
			return err
		}
		index = nextIndex
		if status == service.StatusRunning {
			return nil
		}
		if status == service.StatusFailed {
			return fmt.Errorf("ingestion engine failed to start")
		}
	}
}
