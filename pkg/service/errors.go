package service

import "errors"

var (
	errNotRunning      = errors.New("service is not running")
	errNotPaused       = errors.New("service is not paused")
	errPausedUseResume = errors.New("service is paused; use Resume instead of Start")
	errFailedUseStop   = errors.New("service has failed; use Stop before starting again")
)
