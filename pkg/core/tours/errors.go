package tours

import (
	"errors"
	"fmt"
)

// ErrRemoteOperationFailed matches every failure of a call to the tour store or
// change feed, whatever its cause.
var ErrRemoteOperationFailed = errors.New("remote operation failed")

// RemoteError records which remote operation failed and why
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemoteOperationFailed, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	return []error{ErrRemoteOperationFailed, e.Err}
}

func remoteError(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}
