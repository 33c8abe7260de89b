// Package resilience retries collaborator I/O (workbook saves, run store
// writes) that fails for reasons expected to clear on their own.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// TransientError marks an error as safe to retry. Op names the operation
// that failed, for logs.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient.
func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

// transientPatterns match driver and OS messages that reach us only as text
// (modernc sqlite busy codes, pgconn dial failures, file locks).
var transientPatterns = []string{
	"database is locked",
	"sqlite_busy",
	"database table is locked",
	"resource temporarily unavailable",
	"text file busy",
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"too many connections",
	"the database system is starting up",
}

// IsTransient reports whether err (or anything in its chain) is worth
// retrying: an explicit TransientError, a network timeout, a reset or
// refused connection, a busy file, or a known lock/busy message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
