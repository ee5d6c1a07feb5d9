package queue

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rivergate/usbvault/pkg/config"
)

const (
	directoryBump  = 6
	smallFileBonus = 2
	largeFilePenalty = -2
	smallFileThreshold = 1024              // 1 KiB
	largeFileThreshold = 1 << 30           // 1 GiB
	minPriority         = 0
	maxPriority         = 100
)

// priorityFor computes a task's priority per spec: priority_map[ext]
// (default priority_default), a fixed bump for directories, a bonus for
// very small files and a penalty for very large ones, clamped to
// [0, 100].
func priorityFor(path string, isDir bool, size int64, sizeKnown bool) int {
	base := int(config.PriorityDefault.Get())

	if isDir {
		base += directoryBump
	} else if ext := extension(path); ext != "" {
		if override, ok := config.PriorityMap.Get()[ext]; ok {
			base = override
		}
	}

	if !isDir && sizeKnown {
		switch {
		case size < smallFileThreshold:
			base += smallFileBonus
		case size > largeFileThreshold:
			base += largeFilePenalty
		}
	}

	return clamp(base, minPriority, maxPriority)
}

// extension returns the lowercased extension (without its leading dot)
// of path's base name, or "" if it has none.
func extension(path string) string {
	name := filepath.Base(path)
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[dot+1:])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// statSizeWithTimeout stats path in a separate goroutine and waits at
// most path_filter_stat_timeout_ms for it to complete, since a stat on a
// degraded or network-backed device can stall indefinitely and must
// never block the caller beyond the configured bound.
func statSizeWithTimeout(path string) (int64, bool) {
	timeout := time.Duration(config.PathFilterStatTimeoutMS.Get()) * time.Millisecond

	type result struct {
		size int64
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		info, err := os.Stat(path)
		if err != nil {
			ch <- result{err: err}
			return
		}
		ch <- result{size: info.Size()}
	}()

	select {
	case r := <-ch:
		return r.size, r.err == nil
	case <-time.After(timeout):
		return 0, false
	}
}
