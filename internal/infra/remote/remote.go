package remote

import (
	"context"
	"fmt"
	"io"
)

// Uploader performs the network upload of a payload to the remote write API.
type Uploader interface {
	// Upload sends the payload. A nil error means the remote store has
	// acknowledged the write.
	Upload(ctx context.Context, r io.Reader) error
}

// UploadError is a typed upload failure carrying the archive's internal
// status and, when the failure reached the transport layer, the HTTP status.
type UploadError struct {
	// Status is the domain-level status code reported by the remote store
	// (0 when the store reported none).
	Status int

	// HTTPStatus is the transport status. 0 means the failure never produced
	// an HTTP response, e.g. a connectivity error.
	HTTPStatus int

	Err error
}

func (e *UploadError) Error() string {
	switch {
	case e.HTTPStatus != 0 && e.Err != nil:
		return fmt.Sprintf("upload failed: http=%d status=%d: %v", e.HTTPStatus, e.Status, e.Err)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("upload failed: http=%d status=%d", e.HTTPStatus, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("upload failed: %v", e.Err)
	default:
		return "upload failed"
	}
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// HasHTTPStatus reports whether the failure carries a transport status.
func (e *UploadError) HasHTTPStatus() bool {
	return e.HTTPStatus != 0
}
