package delivery

import "fmt"

// BackupError is a failure of the durable staging store on the critical path
// (write during staging, read before an attempt).
type BackupError struct {
	Op  string // "write" or "read"
	Key string
	Err error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup %s failed for %s: %v", e.Op, e.Key, e.Err)
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

// ExhaustedError means no delivery attempts remain. Err is nil when Deliver
// was called on an already-spent state (no attempt was made) and carries the
// last upload failure otherwise; the two cases stay distinguishable through
// that difference.
type ExhaustedError struct {
	Key             string
	InternalStatus  int
	TransportStatus int
	Err             error
}

func (e *ExhaustedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no delivery attempts left for %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("no delivery attempts left for %s", e.Key)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// NotRetriedError means the upload failed with a transport status excluded
// from the retry filter. It is terminal regardless of remaining attempts.
type NotRetriedError struct {
	Key             string
	InternalStatus  int
	TransportStatus int
	Err             error
}

func (e *NotRetriedError) Error() string {
	return fmt.Sprintf("delivery of %s not retried due to status code %d", e.Key, e.TransportStatus)
}

func (e *NotRetriedError) Unwrap() error {
	return e.Err
}

// CancelledError means the caller's wait was interrupted. The retry chain is
// abandoned; an attempt already in flight is not retracted.
type CancelledError struct {
	Key string
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("delivery of %s cancelled: %v", e.Key, e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}
