package backup

import (
	"context"
	"io"
)

// Store is durable key->bytes storage for staged payloads. A payload written
// under a key must survive until it is explicitly deleted.
type Store interface {
	// Write persists the payload under key, replacing any previous content.
	Write(ctx context.Context, key string, r io.Reader) error

	// Read returns the staged payload. The caller closes the reader.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the staged payload.
	Delete(ctx context.Context, key string) error
}
