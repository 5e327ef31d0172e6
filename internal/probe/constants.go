package probe

import "time"

// Default configuration constants.
const (
	DefaultWorkers = 4
	DefaultTimeout = 60 * time.Second
)

// sosTolerance absorbs float summation order differences.
const sosTolerance = 1e-6

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)
