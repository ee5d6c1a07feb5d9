// Package recycler implements storage housekeeping over the ingestion
// work area: an empty-folder sweep and strategy-based file reclamation
// when storage headroom is exceeded (spec §4.10).
package recycler

import (
	"context"
	"sync"
	"time"

	"github.com/rivergate/usbvault/pkg/bus"
	"github.com/rivergate/usbvault/pkg/config"
	"github.com/rivergate/usbvault/pkg/filesystem"
	"github.com/rivergate/usbvault/pkg/logging"
)

// tickInterval is the recycler's fixed tick period, per spec §4.10.
const tickInterval = 60 * time.Second

// PauseResumer is the subset of pkg/discover's Discoverer the recycler
// needs: a gate that halts device re-scans while storage is over its
// headroom target, so discovery doesn't keep finding work a starved
// work area can't absorb. Satisfied by *discover.Discoverer.
type PauseResumer interface {
	Pause()
	Resume()
}

// Recycler drives the periodic empty-folder sweep and reclamation tick
// over workPath.
type Recycler struct {
	workPath   string
	discoverer PauseResumer
	bus        *bus.Bus
	logger     *logging.Logger

	mu           sync.Mutex
	pausedForLow bool

	now func() time.Time
}

// New constructs a Recycler. discoverer may be nil, in which case the
// recycler never pauses discovery regardless of storage pressure.
func New(workPath string, discoverer PauseResumer, eventBus *bus.Bus, logger *logging.Logger) *Recycler {
	return &Recycler{
		workPath:   workPath,
		discoverer: discoverer,
		bus:        eventBus,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs an initial tick immediately, then ticks every 60 seconds
// until ctx is cancelled.
func (r *Recycler) Run(ctx context.Context) {
	r.tick()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Recycler) tick() {
	r.sweep()
	r.reclaimIfNeeded()
}

func (r *Recycler) sweep() {
	deleted, err := sweepEmptyFolders(r.workPath)
	if err != nil {
		r.logger.Warnf("Empty-folder sweep failed: %s", err.Error())
		return
	}
	if len(deleted) == 0 {
		return
	}
	if r.bus != nil {
		r.bus.Dispatch(newEmptyFoldersDeletedEvent(deleted))
	}
}

func (r *Recycler) reclaimIfNeeded() {
	maxBytes := int64(config.StorageMaxBytes.Get())
	reserved := int64(config.StorageReservedBytes.Get())

	haveCap := maxBytes > 0
	threshold := maxBytes - reserved
	if threshold < 0 {
		threshold = 0
	}

	// The logical cap above is a soft target on the work area's own
	// byte sum. Independently, check the underlying filesystem's real
	// free space: if something outside the work area (or a burst of
	// concurrent copies) has eaten into it below the reserved
	// headroom, tighten the threshold by the same deficit so
	// reclamation pulls in enough to restore it.
	if usage, err := filesystem.QuerySpaceUsage(r.workPath); err == nil {
		if available := int64(usage.Available); available < reserved {
			deficit := reserved - available
			threshold -= deficit
			if threshold < 0 {
				threshold = 0
			}
			haveCap = true
		}
	}

	if !haveCap {
		r.setStorageLow(false)
		return
	}

	protectedAge := time.Duration(config.RecyclerProtectedAgeHours.Get()) * time.Hour
	strategy := config.RecyclerStrategyEntry.Get()

	deleted, reclaimed, usedAfter, err := reclaim(r.workPath, threshold, protectedAge, strategy, r.now())
	if err != nil {
		r.logger.Warnf("Reclamation scan failed: %s", err.Error())
		return
	}

	if len(deleted) > 0 && r.bus != nil {
		r.bus.Dispatch(newFilesRecycledEvent(deleted, strategy, reclaimed))
	}

	stillOver := usedAfter > threshold
	r.setStorageLow(stillOver)

	if stillOver && config.StorageWarningEnabled.Get() {
		r.logger.Warnf("Unable to reclaim enough storage to reach headroom target: %d bytes over", usedAfter-threshold)
	}
}

// setStorageLow pauses or resumes the wired discoverer on a storage-low
// state transition, so repeated ticks don't redundantly pause/resume an
// already-paused/already-running discoverer.
func (r *Recycler) setStorageLow(low bool) {
	if r.discoverer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if low == r.pausedForLow {
		return
	}
	r.pausedForLow = low
	if low {
		r.discoverer.Pause()
	} else {
		r.discoverer.Resume()
	}
}
