package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"syscall"

	"github.com/go-sql-driver/mysql"

	"guardline/internal/model"
)

var (
	// ErrNotFound signals the referenced booking, message or user is absent.
	ErrNotFound = errors.New("store: not found")
	// ErrCodeExists signals a booking code uniqueness conflict.
	ErrCodeExists = errors.New("store: booking code already exists")
	// ErrEmailExists signals an email uniqueness conflict.
	ErrEmailExists = errors.New("store: email already exists")
	// ErrUnavailable signals that the primary was unreachable and the
	// fallback attempt failed too.
	ErrUnavailable = errors.New("store: service unavailable")
)

// IsTransport reports whether err means the backend could not be reached at
// all: connection refused or reset, DNS failure, dead pooled connection, or
// a deadline that expired before the server answered.  Only these failures
// permit a fallback attempt.  An error produced by a server that did answer
// (constraint violation, no rows, bad input) is a business error and must
// propagate unchanged.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	// A structured MySQL error means the server received and rejected the
	// statement; that is never a transport failure.
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// isBusiness reports whether err belongs to the domain taxonomy and must be
// surfaced to the caller unchanged even when raised by the fallback.
func isBusiness(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCodeExists) || errors.Is(err, ErrEmailExists) {
		return true
	}
	var inv *model.InvalidTransitionError
	return errors.As(err, &inv)
}
