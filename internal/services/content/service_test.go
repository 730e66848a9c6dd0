package content

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestService() *Service {
	return NewService(arbor.NewLogger()).(*Service)
}

func TestReadPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	text := "line1\nline2\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	svc := newTestService()
	assert.Equal(t, text, svc.Read(path))
}

func TestReadGzipFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log.1.gz")
	text := "rotated content\nwith two lines\n"

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	svc := newTestService()
	assert.Equal(t, text, svc.Read(path))
}

func TestReadMissingFileReturnsSentinel(t *testing.T) {
	svc := newTestService()

	got := svc.Read(filepath.Join(t.TempDir(), "nope.log"))
	assert.True(t, strings.HasPrefix(got, "Error reading file:"), "got %q", got)
}

func TestReadCorruptArchiveReturnsSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip data"), 0644))

	svc := newTestService()
	got := svc.Read(path)
	assert.True(t, strings.HasPrefix(got, "Error reading file:"), "got %q", got)
}

func TestReadReplacesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binary.log")
	require.NoError(t, os.WriteFile(path, []byte{'o', 'k', 0xff, 0xfe, '!'}, 0644))

	svc := newTestService()
	got := svc.Read(path)
	assert.True(t, strings.HasPrefix(got, "ok"))
	assert.True(t, strings.HasSuffix(got, "!"))
	assert.Contains(t, got, "�")
}
