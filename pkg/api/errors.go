package api

import "errors"

// ErrBinaryNotFound is returned when an executable cannot be located on the search path.
var ErrBinaryNotFound = errors.New("binary not found")
