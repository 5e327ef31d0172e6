package worker

import "errors"

// Sentinel kinds for replay submission.
var (
	// ErrRejected means the queue refused the job because it was full or closed.
	ErrRejected = errors.New("replay job rejected")
	// ErrStopped is returned by Shutdown when workers did not exit in time.
	ErrStopped = errors.New("replay pool did not stop cleanly")
)
