package config

// The entries below are the process's full set of declared configuration
// tunables. Every other package reads its settings through these handles
// rather than through the registry directly, so that the set of valid
// category.key names is fixed at compile time and fully enumerable for
// export.
var (
	// HashBufferSize is the read buffer size used when computing file
	// fingerprints.
	HashBufferSize = Define(Default(), "fingerprint", "hash_buffer_size",
		"Read buffer size, in bytes, used when computing file fingerprints.",
		ByteSize(1<<20))

	// IndexSaveInitialDelaySeconds is the delay, counted from the start of
	// the index's save loop, before its first periodic save.
	IndexSaveInitialDelaySeconds = Define(Default(), "fingerprint", "save_initial_delay_s",
		"Delay, in seconds, from the start of the fingerprint index's save loop to its first periodic save.",
		int64(5))

	// IndexSaveDelaySeconds is the minimum delay between successive
	// periodic fingerprint index saves.
	IndexSaveDelaySeconds = Define(Default(), "fingerprint", "save_delay_s",
		"Minimum delay, in seconds, between successive periodic fingerprint index saves.",
		int64(30))

	// FileFilterMaxSize is the maximum file size eligible for ingestion.
	FileFilterMaxSize = Define(Default(), "filter", "file_filter_max_size",
		"Maximum file size eligible for ingestion; larger files are rejected.",
		ByteSize(4<<30))

	// FileFilterTimeEnabled toggles the age-based file filter.
	FileFilterTimeEnabled = Define(Default(), "filter", "file_filter_time_enabled",
		"Whether the age-based file filter is active.",
		false)

	// FileFilterTimeValue is the magnitude of the age-based file filter
	// threshold, interpreted in FileFilterTimeUnit.
	FileFilterTimeValue = Define(Default(), "filter", "file_filter_time_value",
		"Magnitude of the age-based file filter threshold.",
		int64(0))

	// FileFilterTimeUnit is the unit FileFilterTimeValue is interpreted in.
	FileFilterTimeUnit = Define(Default(), "filter", "file_filter_time_unit",
		"Unit in which file_filter_time_value is interpreted.",
		TimeUnitDays)

	// FileFilterIncludeHidden toggles eligibility of hidden (dot-prefixed)
	// files.
	FileFilterIncludeHidden = Define(Default(), "filter", "file_filter_include_hidden",
		"Whether hidden files (dot-prefixed) are eligible for ingestion.",
		false)

	// FileFilterSkipSymlinks toggles outright rejection of symbolic links.
	FileFilterSkipSymlinks = Define(Default(), "filter", "file_filter_skip_symlinks",
		"Whether symbolic links are rejected outright.",
		true)

	// FileFilterAllowNoExt toggles eligibility of extensionless files.
	FileFilterAllowNoExt = Define(Default(), "filter", "file_filter_allow_no_ext",
		"Whether extensionless files are eligible for ingestion.",
		true)

	// SuffixFilterModeEntry selects whether the suffix filter is disabled,
	// a whitelist, or a blacklist.
	SuffixFilterModeEntry = Define(Default(), "filter", "suffix_filter_mode",
		"Whether the suffix filter is disabled, acts as a whitelist, or acts as a blacklist.",
		SuffixFilterModeNone)

	// SuffixFilterWhitelist is the extension set admitted when
	// SuffixFilterModeEntry is WHITELIST.
	SuffixFilterWhitelist = Define(Default(), "filter", "suffix_filter_whitelist",
		"Extensions admitted when suffix_filter_mode is WHITELIST.",
		[]string{})

	// SuffixFilterBlacklist is the extension set rejected when
	// SuffixFilterModeEntry is BLACKLIST.
	SuffixFilterBlacklist = Define(Default(), "filter", "suffix_filter_blacklist",
		"Extensions rejected when suffix_filter_mode is BLACKLIST.",
		[]string{})

	// SuffixFilterPreset selects a built-in extension set that, when set,
	// is used instead of the explicit whitelist/blacklist.
	SuffixFilterPreset = Define(Default(), "filter", "suffix_filter_preset",
		"Built-in extension set used instead of the explicit whitelist/blacklist when set.",
		SuffixPresetNone)

	// PathFilterExcludeGlobs is a set of doublestar glob patterns matched
	// against the ingestion-relative path; matches are rejected.
	PathFilterExcludeGlobs = Define(Default(), "filter", "path_filter_exclude_globs",
		"Glob patterns matched against the ingestion-relative path; matches are rejected.",
		[]string{})

	// PathFilterStatTimeoutMS bounds the stat call backing the queue's
	// size-based priority adjustment.
	PathFilterStatTimeoutMS = Define(Default(), "filter", "path_filter_stat_timeout_ms",
		"Bound, in milliseconds, on the stat call backing the queue's size-based priority adjustment.",
		int64(50))

	// PriorityDefault is the priority assigned when no extension-specific
	// rule applies.
	PriorityDefault = Define(Default(), "queue", "priority_default",
		"Priority assigned to a task when no extension-specific rule applies.",
		int64(50))

	// PriorityMap holds per-extension priority overrides.
	PriorityMap = Define(Default(), "queue", "priority_map",
		"Per-extension priority overrides, keyed by extension without its leading dot.",
		map[string]int{})

	// RetryCount is the number of additional attempts made for a task that
	// fails with a retryable error.
	RetryCount = Define(Default(), "queue", "retry_count",
		"Number of additional attempts made for a task that fails with a retryable error.",
		int64(2))

	// WorkPath is the root directory under which ingested files are
	// copied.
	WorkPath = Define(Default(), "storage", "work_path",
		"Root directory under which ingested files are copied.",
		"")

	// StorageReservedBytes is the free-space headroom the recycler
	// maintains below the filesystem's total capacity.
	StorageReservedBytes = Define(Default(), "storage", "storage_reserved_bytes",
		"Free-space headroom the recycler maintains below the filesystem's total capacity.",
		ByteSize(1<<30))

	// StorageMaxBytes is a soft cap on the ingestion store's total size; 0
	// disables the cap.
	StorageMaxBytes = Define(Default(), "storage", "storage_max_bytes",
		"Soft cap on the ingestion store's total size; 0 disables the cap.",
		ByteSize(0))

	// StorageWarningEnabled toggles the warning event emitted when the
	// recycler cannot reach its headroom target.
	StorageWarningEnabled = Define(Default(), "storage", "storage_warning_enabled",
		"Whether a warning event is emitted when the recycler cannot reach its headroom target.",
		true)

	// RecyclerStrategyEntry selects the order in which files are reclaimed
	// when storage headroom is exceeded.
	RecyclerStrategyEntry = Define(Default(), "recycler", "recycler_strategy",
		"Order in which files are reclaimed when storage headroom is exceeded.",
		RecyclerStrategyTimeFirst)

	// RecyclerProtectedAgeHours is the minimum age before a file becomes
	// eligible for reclamation.
	RecyclerProtectedAgeHours = Define(Default(), "recycler", "recycler_protected_age_hours",
		"Minimum age, in hours, before a file becomes eligible for reclamation.",
		int64(24))

	// SnifferWaitNormalMinutes is the interval between full re-scans while
	// a device is healthy.
	SnifferWaitNormalMinutes = Define(Default(), "discover", "sniffer_wait_normal_minutes",
		"Interval, in minutes, between full re-scans while a device is healthy.",
		int64(10))

	// SnifferWaitErrorMinutes is the interval between full re-scans while a
	// device is in an error backoff state.
	SnifferWaitErrorMinutes = Define(Default(), "discover", "sniffer_wait_error_minutes",
		"Interval, in minutes, between full re-scans while a device is in an error backoff state.",
		int64(2))

	// DiscoverMaxDepth bounds the directory depth walked during a full
	// re-scan; 0 means unlimited.
	DiscoverMaxDepth = Define(Default(), "discover", "discover_max_depth",
		"Maximum directory depth walked during a full re-scan; 0 means unlimited.",
		int64(64))

	// InitialDelaySeconds is the delay before a newly present device's
	// first scan.
	InitialDelaySeconds = Define(Default(), "discover", "initial_delay_s",
		"Delay, in seconds, before a newly present device's first scan.",
		int64(2))

	// DelaySeconds is a stored delay setting that the discoverer does not
	// read; its wait after an error is sniffer_wait_error_minutes.
	DelaySeconds = Define(Default(), "discover", "delay_s",
		"Delay, in seconds; not read by the discoverer, whose wait after an error is sniffer_wait_error_minutes.",
		int64(5))

	// DeviceBlacklistBySerial lists device serial numbers that are never
	// ingested from.
	DeviceBlacklistBySerial = Define(Default(), "device", "device_blacklist_by_serial",
		"Device serial numbers that are never ingested from.",
		[]string{})

	// DevicePollInitialDelaySeconds is the delay before the device
	// manager's first enumeration tick.
	DevicePollInitialDelaySeconds = Define(Default(), "device", "initial_delay_s",
		"Delay, in seconds, before the device manager's first enumeration tick.",
		int64(1))

	// DevicePollDelaySeconds is the interval between the device manager's
	// enumeration ticks.
	DevicePollDelaySeconds = Define(Default(), "device", "delay_s",
		"Interval, in seconds, between the device manager's enumeration ticks.",
		int64(5))

	// DiscoverCoalesceWindowMS is the debounce window the file discoverer
	// applies to filesystem-change notifications before re-filtering them.
	DiscoverCoalesceWindowMS = Define(Default(), "discover", "coalesce_window_ms",
		"Debounce window, in milliseconds, for filesystem-change notifications.",
		int64(10))

	// DiscoverMaxPendingPaths caps the number of distinct paths the file
	// discoverer will hold pending within a single coalescing window;
	// beyond this a watcher is considered overwhelmed and is restarted
	// with a full re-walk.
	DiscoverMaxPendingPaths = Define(Default(), "discover", "max_pending_paths",
		"Maximum distinct pending paths held within one coalescing window before the watcher is restarted.",
		int64(10*1024))

	// QueueCapacity is the nominal task queue depth used to normalize the
	// queue-depth component of the load score.
	QueueCapacity = Define(Default(), "load", "queue_capacity",
		"Nominal task queue depth used to normalize the queue-depth load component.",
		int64(1000))

	// CopySpeedTargetBytesPerSecond is the throughput the copy-speed load
	// component is normalized against.
	CopySpeedTargetBytesPerSecond = Define(Default(), "load", "copy_speed_target_bytes_per_second",
		"Target copy throughput, in bytes per second, the copy-speed load component is normalized against.",
		ByteSize(50<<20))

	// RejectionWindowSize is the number of most recent admission
	// decisions retained when computing the admission-rejection ratio.
	RejectionWindowSize = Define(Default(), "load", "rejection_window_size",
		"Number of most recent admission decisions retained for the admission-rejection load component.",
		int64(100))

	// WorkerPoolSize is the number of worker goroutines in the shared
	// copy pool.
	WorkerPoolSize = Define(Default(), "scheduler", "worker_pool_size",
		"Number of worker goroutines in the shared copy pool.",
		int64(4))

	// RateLimitTasksPerSecond is the token-bucket fill rate used to
	// throttle task admission at LOW load.
	RateLimitTasksPerSecond = Define(Default(), "scheduler", "rate_limit_tasks_per_second",
		"Token-bucket fill rate, in tasks per second, used to throttle task admission at LOW load.",
		int64(20))

	// RetryBackoffInitialMS is the initial delay before a failed task's
	// first retry; each subsequent retry doubles it.
	RetryBackoffInitialMS = Define(Default(), "scheduler", "retry_backoff_initial_ms",
		"Initial delay, in milliseconds, before a failed task's first retry; doubles on each subsequent retry.",
		int64(500))

	// ShutdownGraceSeconds bounds how long the scheduler waits for
	// in-flight copies to finish during shutdown before abandoning them.
	ShutdownGraceSeconds = Define(Default(), "scheduler", "shutdown_grace_s",
		"Seconds the scheduler waits for in-flight copies to finish during shutdown before abandoning them.",
		int64(30))
)

// IsSerialBlacklisted reports whether the given device serial number
// appears in DeviceBlacklistBySerial.
func IsSerialBlacklisted(serial string) bool {
	for _, blocked := range DeviceBlacklistBySerial.Get() {
		if blocked == serial {
			return true
		}
	}
	return false
}
