package serial

import (
	"errors"
	"log"
	"time"

	"golang.org/x/sys/unix"
)

// Defaults for Applier. Four attempts 100ms apart cover the usual case of a
// line discipline that is mid-transition (e.g. another process draining the
// port) without blocking the caller for more than ~300ms.
const (
	DefaultMaxAttempts = 4
	DefaultRetryDelay  = 100 * time.Millisecond
)

// attrDevice is the two-syscall surface the applier needs from a device.
type attrDevice interface {
	setAttrs(tio *unix.Termios) error
	getAttrs() (*unix.Termios, error)
}

// termDevice commits and reads termios state on a real file descriptor.
type termDevice struct {
	fd int
}

func (d termDevice) setAttrs(tio *unix.Termios) error {
	return unix.IoctlSetTermios(d.fd, unix.TCSETS, tio)
}

func (d termDevice) getAttrs() (*unix.Termios, error) {
	return unix.IoctlGetTermios(d.fd, unix.TCGETS)
}

// Applier commits termios configurations to a device, retrying when the
// kernel reports EAGAIN and verifying the result best-effort.
//
// A zero MaxAttempts means DefaultMaxAttempts. RetryDelay is used as given,
// so a zero value retries immediately; use DefaultRetryDelay for the
// standard backoff. Logf receives verification notices; when nil they go to
// the standard logger.
//
// The caller must own the descriptor exclusively for the duration of Apply;
// there is no internal locking and no way to abort a retry sequence once it
// has started.
type Applier struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Logf        func(format string, args ...interface{})
}

func defaultApplier() *Applier {
	return &Applier{MaxAttempts: DefaultMaxAttempts, RetryDelay: DefaultRetryDelay}
}

// outcome of a single commit attempt.
type attemptResult int

const (
	attemptCommitted attemptResult = iota
	attemptRetryable
	attemptFatal
)

func classifyAttempt(err error) attemptResult {
	switch {
	case err == nil:
		return attemptCommitted
	case errors.Is(err, unix.EAGAIN):
		return attemptRetryable
	default:
		return attemptFatal
	}
}

// Apply commits tio to the descriptor. EAGAIN from the kernel is retried up
// to MaxAttempts with RetryDelay between attempts; any other error fails
// immediately. After a successful commit the attributes are read back and
// compared field-by-field against the request; a divergence is reported
// through Logf but never turns the result into a failure, since drivers may
// legitimately accept only a subset of the requested settings.
func (a *Applier) Apply(fd int, tio *unix.Termios) error {
	return a.apply(termDevice{fd: fd}, tio)
}

func (a *Applier) apply(dev attrDevice, tio *unix.Termios) error {
	maxAttempts := a.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := dev.setAttrs(tio)
		switch classifyAttempt(err) {
		case attemptCommitted:
			a.verify(dev, decodeAttrs(tio))
			return nil
		case attemptFatal:
			return wrapError(err, CodeSetAttrFailed, "could not set serial attributes")
		case attemptRetryable:
			if attempt < maxAttempts {
				time.Sleep(a.RetryDelay)
			}
		}
	}
	return wrapError(unix.EAGAIN, CodeSetAttrRetries,
		"could not set serial attributes after %d attempts", maxAttempts)
}

// verify reads the device state back and reports divergence from want.
// Both failure modes here are advisory only.
func (a *Applier) verify(dev attrDevice, want Attrs) {
	cur, err := dev.getAttrs()
	if err != nil {
		a.logf("serial: could not read back attributes: %v", err)
		return
	}
	if got := decodeAttrs(cur); got != want {
		a.logf("serial: attributes not fully applied (requested %+v, device reports %+v)", want, got)
	}
}

func (a *Applier) logf(format string, args ...interface{}) {
	if a.Logf != nil {
		a.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// ReadAttrs returns the decoded attributes currently active on the
// descriptor.
func ReadAttrs(fd int) (Attrs, error) {
	tio, err := termDevice{fd: fd}.getAttrs()
	if err != nil {
		return Attrs{}, wrapError(err, CodeGetAttrFailed, "could not get serial attributes")
	}
	return decodeAttrs(tio), nil
}
