package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
	"github.com/Esysc/ansible-ws-logging/internal/models"
)

// Service lists recognized log files in the watched directory.
type Service struct {
	dir    string
	logger arbor.ILogger
}

// NewService creates a catalog service for the given directory.
func NewService(dir string, logger arbor.ILogger) interfaces.CatalogService {
	return &Service{
		dir:    dir,
		logger: logger,
	}
}

type fileInfo struct {
	name    string
	modTime time.Time
}

// List returns one entry per *.log / *.gz regular file currently
// present, most recently modified first. A missing directory yields an
// empty list, and files vanishing between glob and stat are skipped.
func (s *Service) List() []models.FileListEntry {
	if _, err := os.Stat(s.dir); err != nil {
		return []models.FileListEntry{}
	}

	var paths []string
	for _, pattern := range []string{"*.log", "*.gz"} {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			s.logger.Warn().Err(err).Str("pattern", pattern).Msg("Glob failed")
			continue
		}
		paths = append(paths, matches...)
	}

	files := make([]fileInfo, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			// File removed between glob and stat
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, fileInfo{name: filepath.Base(path), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].name < files[j].name
	})

	entries := make([]models.FileListEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, models.FileListEntry{Name: f.name})
	}
	return entries
}
