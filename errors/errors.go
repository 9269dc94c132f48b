package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrLedgerFull means the configured maximum of outstanding requests
	// is reached. The incoming request is not stored; callers must surface
	// a warning instead of dropping it silently.
	ErrLedgerFull = fmt.Errorf("request ledger full")
	// ErrUnknownRef means a user command referenced a request that is not
	// outstanding. A user error, never a crash.
	ErrUnknownRef = fmt.Errorf("unknown request reference")
	// ErrPersistenceFailed means the ledger store rejected a write. The
	// in-memory entry stays authoritative for the session.
	ErrPersistenceFailed = fmt.Errorf("persistence failed")
	// ErrProtocolQuery means the engine could not resolve a name or key.
	// Callers degrade to a fallback display instead of aborting dispatch.
	ErrProtocolQuery = fmt.Errorf("protocol query failed")
	// ErrPeerResolution means a group peer number could not be mapped to a
	// stable identity. The membership mutation is skipped; the textual
	// notification still goes out with a placeholder name.
	ErrPeerResolution = fmt.Errorf("peer resolution failed")
	ErrWorkerPanic    = fmt.Errorf("worker panic")
)

// Class buckets engine command failures for retry decisions.
type Class int

const (
	ClassUnknown Class = iota
	// ClassTransient failures may succeed on a later attempt (peer
	// temporarily unreachable, send queue full).
	ClassTransient
	// ClassPermanent failures will not succeed without user action
	// (malformed input, protocol refused the command).
	ClassPermanent
	// ClassUnknownTarget means the friend or group number does not exist
	// in the current session.
	ClassUnknownTarget
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	case ClassUnknownTarget:
		return "unknown-target"
	default:
		return "unknown"
	}
}

// EngineError wraps an engine error code with its classification.
type EngineError struct {
	Class Class
	Err   error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %v (%s)", e.Err, e.Class)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Engine builds a classified engine error.
func Engine(class Class, err error) *EngineError {
	return &EngineError{Class: class, Err: err}
}

// ClassOf extracts the classification from err, ClassUnknown when err was
// not produced by the engine boundary.
func ClassOf(err error) Class {
	var ee *EngineError
	if stderrors.As(err, &ee) {
		return ee.Class
	}
	return ClassUnknown
}

// Transient reports whether a retry later could help.
func Transient(err error) bool { return ClassOf(err) == ClassTransient }
