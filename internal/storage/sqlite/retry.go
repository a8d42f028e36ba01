package sqlite

import (
	"strings"
	"time"
)

// maxBusyRetries caps the number of attempts retryOnBusy makes.
const maxBusyRetries = 5

// isSQLiteBusy reports whether err looks like a SQLITE_BUSY / locked
// database error from the driver.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with exponential backoff while it
// returns a busy error. Non-busy errors fail immediately.
func retryOnBusy(fn func() error) error {
	var err error
	delay := 10 * time.Millisecond
	for attempt := 0; attempt < maxBusyRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
	}
	return err
}
