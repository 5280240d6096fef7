package s3blob

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *memWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects, m.types = map[string][]byte{}, map[string]string{}
	}
	m.objects[path] = b
	m.types[path] = contentType
	return nil
}

func (m *memWriter) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m.objects[path]
	return ok, nil
}

func gunzip(t *testing.T, b []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(b))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(out)
}

func TestArchiveDump(t *testing.T) {
	w := &memWriter{}
	a := NewDumpArchiver(w, w)
	a.now = func() time.Time { return time.Date(2026, 10, 17, 23, 0, 0, 0, time.FixedZone("X", -5*3600)) }
	content := []byte("5.50,,34,,,,,false,,,60003760,,,0\n")

	key, err := a.ArchiveDump(context.Background(), "The Forge-Tritanium-2026.10.17 120000.txt", content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "raw/2026/10/18/"), key)
	assert.True(t, strings.HasSuffix(key, "-The Forge-Tritanium-2026.10.17 120000.txt.gz"), key)
	assert.Equal(t, "application/gzip", w.types[key])
	assert.Equal(t, string(content), gunzip(t, w.objects[key]))

	again, err := a.ArchiveDump(context.Background(), "The Forge-Tritanium-2026.10.17 120000.txt", content)
	require.NoError(t, err)
	assert.Equal(t, key, again)
	assert.Len(t, w.objects, 1)

	other, err := a.ArchiveDump(context.Background(), "The Forge-Tritanium-2026.10.17 120000.txt", []byte("6,,34,,,,,false,,,1,,,0\n"))
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestArchiveDumpUploadError(t *testing.T) {
	a := NewDumpArchiver(&memWriter{err: errors.New("denied")}, nil)
	_, err := a.ArchiveDump(context.Background(), "a.txt", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestObjectKeyAndEndpoint(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "raw/a.gz", c.objectKey("/raw/a.gz"))
	c.prefix = "marketwatch"
	assert.Equal(t, "marketwatch/raw/a.gz", c.objectKey("raw/a.gz"))

	assert.Equal(t, "https://minio:9000", normaliseEndpoint("minio:9000", true))
	assert.Equal(t, "http://minio:9000", normaliseEndpoint("minio:9000", false))
	assert.Equal(t, "https://s3.example.com", normaliseEndpoint("https://s3.example.com", false))
}
