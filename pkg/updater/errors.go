package updater

import (
	"errors"
	"fmt"
)

// Code classifies why a reconciliation run was aborted.
type Code string

const (
	// NotDetected means the browser or driver version or the driver path is absent.
	NotDetected Code = "not_detected"
	// ResolutionFailed means no matching download URL was found in the catalog.
	ResolutionFailed Code = "resolution_failed"
	// TransportFailed means the archive download was unsuccessful or unusable.
	TransportFailed Code = "transport_failed"
	// FilesystemOpFailed covers writing, extracting, copying and removing files.
	FilesystemOpFailed Code = "filesystem_op_failed"
	// ProcessStopFailed is reported when a running driver could not be stopped.
	// It is logged and never aborts a run.
	ProcessStopFailed Code = "process_stop_failed"
)

// Error is an aborted run. Error() is the human readable message printed to
// the user; the cause is available through Unwrap.
type Error struct {
	Code    Code
	State   State
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail renders the message together with its cause for logs.
func (e *Error) Detail() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s at %s)", e.Message, e.Code, e.State)
	}
	return fmt.Sprintf("%s (%s at %s): %v", e.Message, e.Code, e.State, e.Err)
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func abort(code Code, state State, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		State:   state,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
