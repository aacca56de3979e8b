package mutations

import "errors"

// ErrEntityNotFound is returned by AddObservations when a target entity
// name does not exist. The operation is all-or-nothing: nothing is
// persisted and the lock is released untouched.
var ErrEntityNotFound = errors.New("mutations: entity not found")
