package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// DumpArchiver copies a raw market log dump to cold storage. Only the input
// file is archived; snapshots are never stored.
type DumpArchiver interface {
	ArchiveDump(ctx context.Context, fileName string, content []byte) (string, error)
}
