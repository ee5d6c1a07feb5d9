// Package ingest wires together the device manager, discoverer, queue,
// scheduler, fingerprint index, and recycler into the single running
// system described by spec §4.12, and exposes the uniform lifecycle
// surface (pkg/service) that cmd/usbvaultd drives.
package ingest

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/device"
	"github.com/rivergate/usbvault/pkg/discover"
	"github.com/rivergate/usbvault/pkg/filesystem"
	"github.com/rivergate/usbvault/pkg/fingerprint"
	"github.com/rivergate/usbvault/pkg/load"
	"github.com/rivergate/usbvault/pkg/logging"
	"github.com/rivergate/usbvault/pkg/queue"
	"github.com/rivergate/usbvault/pkg/recycler"
	"github.com/rivergate/usbvault/pkg/scheduler"
	"github.com/rivergate/usbvault/pkg/service"
	"github.com/rivergate/usbvault/pkg/workpool"
)

// healthTickInterval is the interval of the Engine's own service.Service
// tick, used only for liveness bookkeeping once the component goroutines
// are running -- the components each keep their own internal tick
// interval (device poll, index save, recycler sweep) independent of this
// one.
const healthTickInterval = 30 * time.Second

// knownSerialsFileName is the file, within the devices subdirectory of
// the data directory, that records ghosts across restarts.
const knownSerialsFileName = "known-serials"

// Engine is the fully wired ingestion system: one Engine per process.
// Its lifecycle (Start/Pause/Resume/Stop/Status) is delegated to a
// single pkg/service.Service, rather than one per component, because the
// components are not independently startable -- the discoverer reacts to
// device events, the scheduler drains the queue the discoverer feeds, and
// the recycler pauses the discoverer -- so there is exactly one
// meaningful lifecycle for the wired whole. Status/WaitForStateChange
// still compose cleanly with a per-component model if one is ever
// needed, since each component's own Run loop is unaffected by how many
// service.Service wrappers sit above it.
type Engine struct {
	workPath string
	logger   *logging.Logger

	bus  *bus.Bus
	pool *workpool.Pool

	indexPath string

	devices    *device.Manager
	discoverer *discover.Discoverer
	index      *fingerprint.Index
	queue      *queue.Queue
	scheduler  *scheduler.Scheduler
	recycler   *recycler.Recycler

	window     *load.Window
	throughput *load.Throughput

	svc *service.Service

	workersMu     sync.Mutex
	workersCtx    context.Context
	workersCancel context.CancelFunc
	workersDone   chan struct{}
	started       bool
}

// New constructs a fully wired Engine rooted at workPath. Device
// ghosts and the fingerprint index are persisted under the process's
// data directory (filesystem.DataDirectory), independent of workPath,
// since they describe history that should survive a change of
// ingestion target.
func New(workPath string, logger *logging.Logger) (*Engine, error) {
	devicesDir, err := filesystem.DataSubdirectory(true, filesystem.DevicesDirectoryName)
	if err != nil {
		return nil, err
	}
	indexDir, err := filesystem.DataSubdirectory(true, filesystem.IndexDirectoryName)
	if err != nil {
		return nil, err
	}

	eventBus, pool := newBusAndPool(logger)

	devices := device.New(
		filepath.Join(devicesDir, knownSerialsFileName),
		device.DefaultVolumeEnumerator,
		device.DefaultSerialQuery,
		device.DefaultLabelQuery,
		eventBus,
		logger.Sublogger("device"),
	)

	indexPath := fingerprint.DefaultPath(indexDir)
	idx := fingerprint.New(indexPath, eventBus, logger.Sublogger("fingerprint"))

	q := queue.NewBounded(int(config.QueueCapacity.Get()))

	window := load.NewWindow(int(config.RejectionWindowSize.Get()))
	throughput := load.NewThroughput(time.Minute)

	e := &Engine{
		workPath:   workPath,
		logger:     logger,
		bus:        eventBus,
		pool:       pool,
		indexPath:  indexPath,
		devices:    devices,
		index:      idx,
		queue:      q,
		window:     window,
		throughput: throughput,
	}

	e.discoverer = discover.New(eventBus, devices, logger.Sublogger("discover"))
	e.recycler = recycler.New(workPath, e.discoverer, eventBus, logger.Sublogger("recycler"))
	e.scheduler = scheduler.New(q, pool, idx, devices, e.loadScore, workPath, eventBus, logger.Sublogger("scheduler"))

	e.svc = service.New("ingest", healthTickInterval, e.tick, e.cleanup, logger.Sublogger("service"))

	return e, nil
}

func newBusAndPool(logger *logging.Logger) (*bus.Bus, *workpool.Pool) {
	pool := workpool.New(int(config.WorkerPoolSize.Get()))
	return bus.New(pool, logger.Sublogger("bus")), pool
}

// Start loads persisted state, subscribes every component to the event
// bus, launches each component's Run loop, and transitions the Engine to
// RUNNING. It is idempotent while already starting or running.
func (e *Engine) Start() error {
	return e.svc.Start()
}

// Pause suppresses discovery of new work, per spec's storage-pause rule,
// without tearing down any running component; already-queued and
// already-admitted tasks continue to completion.
func (e *Engine) Pause() error {
	if err := e.svc.Pause(); err != nil {
		return err
	}
	e.discoverer.Pause()
	return nil
}

// Resume re-enables discovery after a Pause.
func (e *Engine) Resume() error {
	if err := e.svc.Resume(); err != nil {
		return err
	}
	e.discoverer.Resume()
	return nil
}

// Stop cancels every component's Run loop, waits for them to exit
// (bounded by ctx), performs a final fingerprint index save, and
// transitions the Engine to STOPPED.
func (e *Engine) Stop(ctx context.Context) error {
	return e.svc.Stop(ctx)
}

// Status reports the Engine's current lifecycle state.
func (e *Engine) Status() service.Status {
	return e.svc.Status()
}

// WaitForStateChange blocks until the Engine's status differs from the
// one observed at previousIndex, or ctx is cancelled.
func (e *Engine) WaitForStateChange(ctx context.Context, previousIndex uint64) (service.Status, uint64, error) {
	return e.svc.WaitForStateChange(ctx, previousIndex)
}

// tick is the Engine's service.Service TickFunc. On its first call it
// loads persisted state, wires the discovery-to-queue listener, and
// launches every component's Run loop in a single cancellable worker
// group; every later call (the health tick) is a cheap no-op, since the
// components manage their own internal schedules independently of this
// one.
func (e *Engine) tick(ctx context.Context) error {
	e.workersMu.Lock()
	started := e.started
	e.workersMu.Unlock()
	if started {
		return nil
	}
	return e.launchWorkers()
}

func (e *Engine) launchWorkers() error {
	if err := e.devices.Load(); err != nil {
		e.logger.Warnf("Unable to load known devices: %s", err.Error())
	}
	if err := e.index.Load(); err != nil {
		e.logger.Warnf("Unable to load fingerprint index: %s", err.Error())
	}

	e.discoverer.Subscribe()
	e.subscribeDiscoveryToQueue()

	workersCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.workersMu.Lock()
	e.workersCtx = workersCtx
	e.workersCancel = cancel
	e.workersDone = done
	e.started = true
	e.workersMu.Unlock()

	var wg sync.WaitGroup
	run := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(workersCtx)
		}()
	}
	run(e.devices.Run)
	run(e.index.Run)
	run(e.recycler.Run)
	run(func(ctx context.Context) { e.scheduler.Run(ctx) })

	go func() {
		wg.Wait()
		close(done)
	}()

	return nil
}

// cleanup runs once, after the worker context has been cancelled and
// every component's Run loop has exited (or the stop deadline elapsed),
// performing a final best-effort index save. It is the service.Service
// cleanup hook passed to service.New.
func (e *Engine) cleanup() {
	e.workersMu.Lock()
	cancel := e.workersCancel
	done := e.workersDone
	e.workersMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := e.index.Save(e.indexPath, e.logger); err != nil {
		e.logger.Warnf("Final fingerprint index save failed: %s", err.Error())
	}
}

// subscribeDiscoveryToQueue registers the listener that turns each
// discovered file into a queue.Task. Per spec §4.9's graceful-
// degradation rule, a rejected Offer (queue closed, or bounded and full)
// falls back to a direct synchronous run on the scheduler rather than
// dropping the file; both outcomes are recorded in the admission-
// rejection window the load evaluator reads.
func (e *Engine) subscribeDiscoveryToQueue() {
	bus.Register(e.bus, discover.ClassFileDiscovered, func(ev discover.FileDiscoveredEvent) {
		task := queue.NewTask(ev.Serial, ev.Path, ev.RelPath, ev.Size)
		accepted := e.queue.Offer(task)
		e.window.Record(!accepted)
		if !accepted {
			e.workersMu.Lock()
			ctx := e.workersCtx
			e.workersMu.Unlock()
			if ctx == nil {
				ctx = context.Background()
			}
			e.scheduler.RunDirect(ctx, task)
		}
	})

	bus.Register(e.bus, scheduler.ClassCopyCompleted, func(ev scheduler.CopyCompletedEvent) {
		if ev.Result == scheduler.ResultSuccess {
			e.throughput.Record(ev.Size)
		}
	})
}

// loadScore evaluates the Engine's current load, feeding the scheduler's
// concurrency cap and rate limit.
func (e *Engine) loadScore() load.Score {
	offered, rejected := e.window.Counts()
	return load.Evaluate(load.Metrics{
		QueueDepth:                    e.queue.Len(),
		QueueCapacity:                 int(config.QueueCapacity.Get()),
		CopySpeedBytesPerSecond:       e.throughput.BytesPerSecond(),
		CopySpeedTargetBytesPerSecond: float64(config.CopySpeedTargetBytesPerSecond.Get()),
		ActiveWorkers:                 e.scheduler.ActiveWorkers(),
		TotalWorkers:                  e.pool.Size(),
		Offered:                       offered,
		Rejected:                      rejected,
	})
}

// Snapshot is a read-only point-in-time view of the Engine, used by
// cmd/usbvaultd's status subcommand.
type Snapshot struct {
	Status     service.Status
	WorkPath   string
	Devices    []device.Device
	QueueDepth int
	LoadLevel  load.Level
	IndexSize  int
}

// Snapshot captures the Engine's current observable state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Status:     e.svc.Status(),
		WorkPath:   e.workPath,
		Devices:    e.devices.Snapshot(),
		QueueDepth: e.queue.Len(),
		LoadLevel:  e.loadScore().Level,
		IndexSize:  e.index.Len(),
	}
}
