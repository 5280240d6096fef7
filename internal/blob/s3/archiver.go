package s3blob

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

// ObjectChecker is the part of Reader the archiver needs.
type ObjectChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// DumpArchiver implements domain.DumpArchiver. Each dump is gzipped and
// stored under a content-addressed key, so re-exporting identical market
// data is uploaded once:
//
//	raw/2026/10/17/3f9a0c1b2d4e5f60-The Forge-Tritanium-2026.10.17 120000.txt.gz
type DumpArchiver struct {
	writer  domain.BlobWriter
	checker ObjectChecker
	now     func() time.Time
}

// NewDumpArchiver creates a DumpArchiver. checker may be nil to always upload.
func NewDumpArchiver(writer domain.BlobWriter, checker ObjectChecker) *DumpArchiver {
	return &DumpArchiver{writer: writer, checker: checker, now: time.Now}
}

// ArchiveDump uploads content and returns its key.
func (a *DumpArchiver) ArchiveDump(ctx context.Context, fileName string, content []byte) (string, error) {
	key := dumpKey(a.now().UTC(), fileName, content)

	if a.checker != nil {
		exists, err := a.checker.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("s3blob: archive dump: %w", err)
		}
		if exists {
			return key, nil
		}
	}

	body, err := gzipBytes(content)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive dump compress: %w", err)
	}
	if err := a.writer.Put(ctx, key, bytes.NewReader(body), "application/gzip"); err != nil {
		return "", fmt.Errorf("s3blob: archive dump upload: %w", err)
	}
	return key, nil
}

// dumpKey partitions by UTC day and prefixes the file name with the first
// 16 hex digits of the content hash.
func dumpKey(day time.Time, fileName string, content []byte) string {
	sum := sha256.Sum256(content)
	name := hex.EncodeToString(sum[:8]) + "-" + path.Base(fileName) + ".gz"
	return path.Join("raw", day.Format("2006/01/02"), name)
}

func gzipBytes(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(content); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ domain.DumpArchiver = (*DumpArchiver)(nil)
