package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeFileAt(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestListFiltersRecognizedSuffixes(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFileAt(t, filepath.Join(dir, "app.log"), now)
	writeFileAt(t, filepath.Join(dir, "app.log.1.gz"), now)
	writeFileAt(t, filepath.Join(dir, "notes.txt"), now)
	writeFileAt(t, filepath.Join(dir, "README"), now)

	svc := NewService(dir, arbor.NewLogger())
	entries := svc.List()

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"app.log", "app.log.1.gz"}, names)
}

func TestListOrdersByModTimeDescending(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFileAt(t, filepath.Join(dir, "oldest.log"), now.Add(-2*time.Hour))
	writeFileAt(t, filepath.Join(dir, "newest.log"), now)
	writeFileAt(t, filepath.Join(dir, "middle.gz"), now.Add(-1*time.Hour))

	svc := NewService(dir, arbor.NewLogger())
	entries := svc.List()

	require.Len(t, entries, 3)
	assert.Equal(t, "newest.log", entries[0].Name)
	assert.Equal(t, "middle.gz", entries[1].Name)
	assert.Equal(t, "oldest.log", entries[2].Name)
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "does-not-exist"), arbor.NewLogger())
	assert.Empty(t, svc.List())
}

func TestListSkipsNonRegularFiles(t *testing.T) {
	dir := t.TempDir()
	writeFileAt(t, filepath.Join(dir, "real.log"), time.Now())
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.log"), 0755))

	svc := NewService(dir, arbor.NewLogger())
	entries := svc.List()

	require.Len(t, entries, 1)
	assert.Equal(t, "real.log", entries[0].Name)
}

func TestListDoesNotRecurse(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0755))
	writeFileAt(t, filepath.Join(nested, "hidden.log"), time.Now())

	svc := NewService(dir, arbor.NewLogger())
	assert.Empty(t, svc.List())
}
