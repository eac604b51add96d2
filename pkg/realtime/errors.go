package realtime

import "errors"

var (
	// ErrSendFailure is logged when a frame cannot be written. Publishers
	// never see it; the failed connection is dropped instead.
	ErrSendFailure = errors.New("realtime.send_failure")
	ErrClosed      = errors.New("realtime.connection_closed")
)
