// Package archive keeps a copy of every accepted upload in object storage.
package archive

import "context"

// Archiver stores the raw bytes of an accepted upload and returns the key
// it was stored under.
type Archiver interface {
	Archive(ctx context.Context, fileName string, data []byte) (string, error)
}

// Noop is used when no bucket is configured.
type Noop struct{}

func (Noop) Archive(context.Context, string, []byte) (string, error) { return "", nil }
